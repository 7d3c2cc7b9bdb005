// Package config reads runtime settings from the environment, after an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/intelligence"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/logging"
)

// Config holds everything cmd/server and cmd/civicctl need
type Config struct {
	Port        string
	Env         string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	Log logging.Config

	Intelligence intelligence.Config
}

// Load reads .env when present and then the process environment
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the process environment only. Unset keys take
// their defaults; malformed numbers are reported together.
func FromEnv() (*Config, error) {
	p := &parser{}

	ic := intelligence.DefaultConfig()
	ic.Classifier.MinScore = p.float("CLASSIFIER_MIN_SCORE", ic.Classifier.MinScore)
	ic.Hotspot.CellSizeDegrees = p.float("HOTSPOT_CELL_DEGREES", ic.Hotspot.CellSizeDegrees)
	ic.Duplicate.RadiusMeters = p.float("DUPLICATE_RADIUS_METERS", ic.Duplicate.RadiusMeters)
	ic.Duplicate.Threshold = p.float("DUPLICATE_THRESHOLD", ic.Duplicate.Threshold)
	ic.Duplicate.TextWeight = p.float("DUPLICATE_TEXT_WEIGHT", ic.Duplicate.TextWeight)
	ic.Duplicate.GeoWeight = p.float("DUPLICATE_GEO_WEIGHT", ic.Duplicate.GeoWeight)
	ic.Priority.Breakpoints.Critical = p.float("PRIORITY_CRITICAL", ic.Priority.Breakpoints.Critical)
	ic.Priority.Breakpoints.High = p.float("PRIORITY_HIGH", ic.Priority.Breakpoints.High)
	ic.Priority.Breakpoints.Medium = p.float("PRIORITY_MEDIUM", ic.Priority.Breakpoints.Medium)
	ic.Trend.Window = p.int("TREND_WINDOW", ic.Trend.Window)
	ic.Trend.GrowthThreshold = p.float("TREND_GROWTH_THRESHOLD", ic.Trend.GrowthThreshold)
	ic.DensityRadiusMeters = p.float("DENSITY_RADIUS_METERS", ic.DensityRadiusMeters)
	ic.ProfilesPath = getEnv("CATEGORY_PROFILES_PATH", "")
	ic.ClassifierModelPath = getEnv("CLASSIFIER_MODEL_PATH", "")
	ic.PriorityModelPath = getEnv("PRIORITY_MODEL_PATH", "")

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("GO_ENV", "development"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       p.int("REDIS_DB", 0),
		CacheTTL:      time.Duration(p.int("ANALYTICS_CACHE_TTL_SECONDS", 60)) * time.Second,
		KafkaBrokers:  splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:    getEnv("KAFKA_TOPIC_ISSUES", "civic.issues"),
		Log: logging.Config{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Intelligence: ic,
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Production reports whether GO_ENV is "production"
func (c *Config) Production() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

type parser struct {
	errs []error
}

func (p *parser) int(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, raw))
		return defaultValue
	}
	return v
}

func (p *parser) float(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid number %q", key, raw))
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
