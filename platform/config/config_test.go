package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseScoringYAMLOverlaysPresentKeys(t *testing.T) {
	scoring := DefaultScoring()
	raw := []byte("highValueThreshold: 20000\nrecentDays: 3\n")

	if err := ParseScoringYAML(raw, &scoring); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if scoring.HighValueThreshold != 20000 || scoring.RecentDays != 3 {
		t.Fatalf("overlay not applied: %+v", scoring)
	}
	if scoring.MediumValueThreshold != 5000 || scoring.HighPriorityScoreThreshold != 80 {
		t.Fatalf("absent keys must keep defaults: %+v", scoring)
	}
}

func TestScoringValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Scoring)
		ok     bool
	}{
		{"defaults", func(*Scoring) {}, true},
		{"negative value", func(s *Scoring) { s.MediumValueThreshold = -1 }, false},
		{"inverted value bands", func(s *Scoring) { s.MediumValueThreshold = 20000 }, false},
		{"inverted priority bands", func(s *Scoring) { s.MediumPriorityScoreThreshold = 90 }, false},
		{"negative recency", func(s *Scoring) { s.RecentDays = -1 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := DefaultScoring()
			tc.mutate(&s)
			if err := s.Validate(); (err == nil) != tc.ok {
				t.Fatalf("Validate() = %v, want ok=%v", err, tc.ok)
			}
		})
	}
}

func TestLoadMemoryStoreWithoutDatabase(t *testing.T) {
	t.Setenv("LEAD_STORE", "memory")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SCORING_HIGH_PRIORITY_THRESHOLD", "85")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.UsesMemoryStore() {
		t.Fatalf("expected memory store")
	}
	if cfg.GetHighPriorityScoreThreshold() != 85 {
		t.Fatalf("env override ignored: %d", cfg.GetHighPriorityScoreThreshold())
	}
}

func TestLoadRequiresDatabaseForPostgres(t *testing.T) {
	t.Setenv("LEAD_STORE", "postgres")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected DATABASE_URL to be required")
	}
}

func TestLoadReadsScoringFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	if err := os.WriteFile(path, []byte("mediumPriorityScoreThreshold: 40\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LEAD_STORE", "memory")
	t.Setenv("SCORING_CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GetMediumPriorityScoreThreshold() != 40 {
		t.Fatalf("file override ignored: %d", cfg.GetMediumPriorityScoreThreshold())
	}
}
