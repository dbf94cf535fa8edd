// Package scoring computes a lead's score (0-100) and priority tier.
//
// Every function here is pure: the same lead, configuration and reference
// time always produce the same result. Absent optional fields contribute zero.
package scoring

import (
	"strings"
	"time"

	"leadtracker_backend/internal/leads/domain"
	"leadtracker_backend/platform/config"
)

const (
	// scoreVersion tracks the scoring model for debugging and analysis.
	// Bump this when changing scoring logic.
	scoreVersion = "2026-v1"

	maxScore = 100
	minScore = 0

	// staleAfter is the upper bound of the "somewhat recent" recency band.
	staleAfter = 30 * 24 * time.Hour
)

// Config holds the thresholds the engine reads at call time.
type Config struct {
	HighValueThreshold           float64
	MediumValueThreshold         float64
	HighPriorityScoreThreshold   int
	MediumPriorityScoreThreshold int
	RecentDays                   int
}

// DefaultConfig mirrors config.DefaultScoring.
func DefaultConfig() Config {
	d := config.DefaultScoring()
	return Config{
		HighValueThreshold:           d.HighValueThreshold,
		MediumValueThreshold:         d.MediumValueThreshold,
		HighPriorityScoreThreshold:   d.HighPriorityScoreThreshold,
		MediumPriorityScoreThreshold: d.MediumPriorityScoreThreshold,
		RecentDays:                   d.RecentDays,
	}
}

// FromSettings copies the thresholds out of the application configuration.
func FromSettings(cfg config.ScoringConfig) Config {
	return Config{
		HighValueThreshold:           cfg.GetHighValueThreshold(),
		MediumValueThreshold:         cfg.GetMediumValueThreshold(),
		HighPriorityScoreThreshold:   cfg.GetHighPriorityScoreThreshold(),
		MediumPriorityScoreThreshold: cfg.GetMediumPriorityScoreThreshold(),
		RecentDays:                   cfg.GetRecentDays(),
	}
}

// Breakdown is the per-factor contribution behind a score.
type Breakdown struct {
	EstimatedValue int             `json:"estimatedValue"`
	Source         int             `json:"source"`
	Completeness   int             `json:"completeness"`
	Engagement     int             `json:"engagement"`
	Recency        int             `json:"recency"`
	Seniority      int             `json:"seniority"`
	ReferralBonus  int             `json:"referralBonus"`
	Total          int             `json:"total"`
	Score          int             `json:"score"`
	Priority       domain.Priority `json:"priority"`
	Version        string          `json:"version"`
}

// Score returns the clamped score and its priority tier.
func Score(lead domain.Lead, cfg Config, now time.Time) (int, domain.Priority) {
	b := Explain(lead, cfg, now)
	return b.Score, b.Priority
}

// Apply writes the computed score and priority onto lead and reports whether either changed.
func Apply(lead *domain.Lead, cfg Config, now time.Time) bool {
	score, priority := Score(*lead, cfg, now)
	changed := score != lead.Score || priority != lead.Priority
	lead.Score = score
	lead.Priority = priority
	return changed
}

// Explain computes every factor. The engagement factor is intentionally not
// capped on its own and can reach 25; only the final total is clamped.
func Explain(lead domain.Lead, cfg Config, now time.Time) Breakdown {
	b := Breakdown{
		EstimatedValue: valuePoints(lead.EstimatedValue, cfg),
		Source:         sourcePoints(lead.Source),
		Completeness:   completenessPoints(lead),
		Engagement:     engagementPoints(lead),
		Recency:        recencyPoints(lead.CreatedAt, cfg, now),
		Seniority:      seniorityPoints(lead.JobTitle),
		ReferralBonus:  referralBonus(lead.Source),
		Version:        scoreVersion,
	}
	b.Total = b.EstimatedValue + b.Source + b.Completeness + b.Engagement + b.Recency + b.Seniority + b.ReferralBonus
	b.Score = clamp(b.Total)
	b.Priority = Classify(b.Score, cfg)
	return b
}

// Classify maps a score to a tier using the thresholds in cfg.
func Classify(score int, cfg Config) domain.Priority {
	switch {
	case score >= cfg.HighPriorityScoreThreshold:
		return domain.PriorityHigh
	case score >= cfg.MediumPriorityScoreThreshold:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

func clamp(total int) int {
	if total > maxScore {
		return maxScore
	}
	if total < minScore {
		return minScore
	}
	return total
}

func valuePoints(value *float64, cfg Config) int {
	if value == nil {
		return 0
	}
	switch v := *value; {
	case v >= cfg.HighValueThreshold:
		return 30
	case v >= cfg.MediumValueThreshold:
		return 20
	case v > 0:
		return 10
	default:
		return 0
	}
}

var sourceTable = map[domain.Source]int{
	domain.SourceReferral:       20,
	domain.SourceLinkedIn:       18,
	domain.SourceWebsite:        15,
	domain.SourceGoogleAds:      12,
	domain.SourcePhone:          12,
	domain.SourceEmailMarketing: 10,
	domain.SourceEvent:          10,
	domain.SourceChat:           8,
	domain.SourceInstagram:      8,
	domain.SourceFacebook:       6,
	domain.SourceOther:          5,
}

func sourcePoints(source domain.Source) int {
	if points, ok := sourceTable[source]; ok {
		return points
	}
	return sourceTable[domain.SourceOther]
}

func referralBonus(source domain.Source) int {
	if source == domain.SourceReferral {
		return 10
	}
	return 0
}

func completenessPoints(lead domain.Lead) int {
	points := 0
	for _, field := range []*string{lead.Company, lead.JobTitle, lead.Phone, lead.Notes} {
		if domain.HasText(field) {
			points += 5
		}
	}
	return points
}

func engagementPoints(lead domain.Lead) int {
	points := 0
	if lead.HasResponded {
		points += 15
	}
	if lead.InteractionCount > 0 {
		points += min(lead.InteractionCount*3, 5)
	}
	if lead.MarketingConsent {
		points += 5
	}
	return points
}

func recencyPoints(createdAt time.Time, cfg Config, now time.Time) int {
	age := now.Sub(createdAt)
	switch {
	case age <= time.Duration(cfg.RecentDays)*24*time.Hour:
		return 10
	case age <= staleAfter:
		return 5
	default:
		return 0
	}
}

// Title tiers, checked in order; the first tier with a matching term wins.
var seniorityTiers = []struct {
	points int
	terms  []string
}{
	{10, []string{"director", "ceo", "president", "partner", "founder", "c-level", "cfo", "cto", "cmo", "diretor", "presidente", "sócio", "fundador"}},
	{7, []string{"manager", "coordinator", "supervisor", "head", "lead", "gerente", "coordenador"}},
	{4, []string{"analyst", "specialist", "consultant", "engineer", "developer", "analista", "especialista", "consultor", "engenheiro", "desenvolvedor"}},
}

const otherTitlePoints = 2

func init() {
	for i := range seniorityTiers {
		for j, term := range seniorityTiers[i].terms {
			seniorityTiers[i].terms[j] = domain.Fold(term)
		}
	}
}

func seniorityPoints(jobTitle *string) int {
	if !domain.HasText(jobTitle) {
		return 0
	}
	title := domain.Fold(strings.TrimSpace(*jobTitle))
	for _, tier := range seniorityTiers {
		for _, term := range tier.terms {
			if strings.Contains(title, term) {
				return tier.points
			}
		}
	}
	return otherTitlePoints
}
