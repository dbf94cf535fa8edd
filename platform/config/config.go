// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// Lead store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetWriteRateLimitPerMinute() int
}

// ScoringConfig provides the lead scoring thresholds.
type ScoringConfig interface {
	GetHighValueThreshold() float64
	GetMediumValueThreshold() float64
	GetHighPriorityScoreThreshold() int
	GetMediumPriorityScoreThreshold() int
	GetRecentDays() int
}

// SchedulerConfig provides settings for the background rescoring worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetRescoreCron() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Scoring holds the scoring thresholds. Field tags match the optional YAML file.
type Scoring struct {
	HighValueThreshold           float64 `yaml:"highValueThreshold"`
	MediumValueThreshold         float64 `yaml:"mediumValueThreshold"`
	HighPriorityScoreThreshold   int     `yaml:"highPriorityScoreThreshold"`
	MediumPriorityScoreThreshold int     `yaml:"mediumPriorityScoreThreshold"`
	RecentDays                   int     `yaml:"recentDays"`
}

// DefaultScoring returns the built-in scoring thresholds.
func DefaultScoring() Scoring {
	return Scoring{
		HighValueThreshold:           10000,
		MediumValueThreshold:         5000,
		HighPriorityScoreThreshold:   80,
		MediumPriorityScoreThreshold: 50,
		RecentDays:                   7,
	}
}

// Config holds all application configuration values.
type Config struct {
	Env                     string
	HTTPAddr                string
	LeadStore               string
	DatabaseURL             string
	MigrateOnStart          bool
	CORSAllowAll            bool
	CORSOrigins             []string
	CORSAllowCreds          bool
	WriteRateLimitPerMinute int
	RedisURL                string
	RedisTLSInsecure        bool
	AsynqQueueName          string
	AsynqConcurrency        int
	RescoreCron             string
	Scoring                 Scoring
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// UsesMemoryStore reports whether leads live in process memory instead of PostgreSQL.
func (c *Config) UsesMemoryStore() bool { return c.LeadStore == StoreMemory }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string             { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool           { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string        { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool         { return c.CORSAllowCreds }
func (c *Config) GetWriteRateLimitPerMinute() int { return c.WriteRateLimitPerMinute }

// ScoringConfig implementation
func (c *Config) GetHighValueThreshold() float64     { return c.Scoring.HighValueThreshold }
func (c *Config) GetMediumValueThreshold() float64   { return c.Scoring.MediumValueThreshold }
func (c *Config) GetHighPriorityScoreThreshold() int { return c.Scoring.HighPriorityScoreThreshold }
func (c *Config) GetMediumPriorityScoreThreshold() int {
	return c.Scoring.MediumPriorityScoreThreshold
}
func (c *Config) GetRecentDays() int { return c.Scoring.RecentDays }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }
func (c *Config) GetRescoreCron() string    { return c.RescoreCron }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	scoring, err := loadScoring()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:                     getEnv("APP_ENV", "development"),
		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		LeadStore:               strings.ToLower(getEnv("LEAD_STORE", StorePostgres)),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		MigrateOnStart:          strings.EqualFold(getEnv("MIGRATE_ON_START", "true"), "true"),
		CORSAllowAll:            corsAllowAll,
		CORSOrigins:             corsOrigins,
		CORSAllowCreds:          strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		WriteRateLimitPerMinute: mustInt(getEnv("WRITE_RATE_LIMIT_PER_MINUTE", "120")),
		RedisURL:                getEnv("REDIS_URL", ""),
		RedisTLSInsecure:        strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:          getEnv("ASYNQ_QUEUE", "leads"),
		AsynqConcurrency:        mustInt(getEnv("ASYNQ_CONCURRENCY", "4")),
		RescoreCron:             getEnv("RESCORE_CRON", "0 3 * * *"),
		Scoring:                 scoring,
	}

	switch cfg.LeadStore {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("LEAD_STORE must be %q or %q, got %q", StorePostgres, StoreMemory, cfg.LeadStore)
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

// loadScoring starts from the defaults, overlays SCORING_CONFIG_PATH (YAML)
// when set, then the individual SCORING_* variables.
func loadScoring() (Scoring, error) {
	scoring := DefaultScoring()

	if path := getEnv("SCORING_CONFIG_PATH", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Scoring{}, fmt.Errorf("read scoring config: %w", err)
		}
		if err := ParseScoringYAML(raw, &scoring); err != nil {
			return Scoring{}, err
		}
	}

	if v := getEnv("SCORING_HIGH_VALUE_THRESHOLD", ""); v != "" {
		scoring.HighValueThreshold = mustFloat(v)
	}
	if v := getEnv("SCORING_MEDIUM_VALUE_THRESHOLD", ""); v != "" {
		scoring.MediumValueThreshold = mustFloat(v)
	}
	if v := getEnv("SCORING_HIGH_PRIORITY_THRESHOLD", ""); v != "" {
		scoring.HighPriorityScoreThreshold = mustInt(v)
	}
	if v := getEnv("SCORING_MEDIUM_PRIORITY_THRESHOLD", ""); v != "" {
		scoring.MediumPriorityScoreThreshold = mustInt(v)
	}
	if v := getEnv("SCORING_RECENT_DAYS", ""); v != "" {
		scoring.RecentDays = mustInt(v)
	}

	if err := scoring.Validate(); err != nil {
		return Scoring{}, err
	}
	return scoring, nil
}

// ParseScoringYAML overlays the keys present in raw onto dst.
func ParseScoringYAML(raw []byte, dst *Scoring) error {
	if err := yaml.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("parse scoring config: %w", err)
	}
	return nil
}

// Validate rejects threshold combinations that would make classification meaningless.
func (s Scoring) Validate() error {
	if s.HighValueThreshold < 0 || s.MediumValueThreshold < 0 {
		return fmt.Errorf("scoring value thresholds must be non-negative")
	}
	if s.MediumValueThreshold > s.HighValueThreshold {
		return fmt.Errorf("scoring mediumValueThreshold (%.2f) exceeds highValueThreshold (%.2f)", s.MediumValueThreshold, s.HighValueThreshold)
	}
	if s.MediumPriorityScoreThreshold > s.HighPriorityScoreThreshold {
		return fmt.Errorf("scoring mediumPriorityScoreThreshold (%d) exceeds highPriorityScoreThreshold (%d)", s.MediumPriorityScoreThreshold, s.HighPriorityScoreThreshold)
	}
	if s.RecentDays < 0 {
		return fmt.Errorf("scoring recentDays must be non-negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func mustInt(value string) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		panic(fmt.Sprintf("invalid integer value: %s", value))
	}
	return parsed
}

func mustFloat(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		panic(fmt.Sprintf("invalid number value: %s", value))
	}
	return parsed
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
