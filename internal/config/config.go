// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPPort    int    `envconfig:"HTTP_PORT" default:"8080"`

	// Gemini (required)
	GeminiAPIKey      string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel       string        `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
	GenerationTimeout time.Duration `envconfig:"GENERATION_TIMEOUT" default:"30s"`

	// Google Sheets row store (required)
	SheetID             string `envconfig:"SHEET_ID"`
	SheetName           string `envconfig:"SHEET_NAME" default:"Summaries"`
	ServiceAccountEmail string `envconfig:"GOOGLE_SERVICE_ACCOUNT_EMAIL"`
	ServiceAccountKey   string `envconfig:"GOOGLE_PRIVATE_KEY"`
	HistoryLimit        int    `envconfig:"HISTORY_LIMIT" default:"5"`

	// Glide propagation (optional — all three required to enable)
	GlideAPIToken      string `envconfig:"GLIDE_API_TOKEN"`
	GlideAppID         string `envconfig:"GLIDE_APP_ID"`
	GlideTableName     string `envconfig:"GLIDE_TABLE_NAME"`
	GlideSummaryColumn string `envconfig:"GLIDE_SUMMARY_COLUMN" default:"summary"`

	// HTTP server
	RateLimitRPS   int `envconfig:"RATE_LIMIT_RPS" default:"0"` // 0 disables the limiter
	RateLimitBurst int `envconfig:"RATE_LIMIT_BURST" default:"0"`
}

// GlideEnabled returns true if Glide propagation credentials are configured.
func (c *Config) GlideEnabled() bool {
	return c.GlideAPIToken != "" && c.GlideAppID != "" && c.GlideTableName != ""
}

// PrivateKey returns the service account key with literal `\n` sequences
// restored to newlines. Deployment tooling commonly flattens PEM blocks
// into a single env var line.
func (c *Config) PrivateKey() string {
	return strings.ReplaceAll(c.ServiceAccountKey, `\n`, "\n")
}

// Validate checks that all required credentials are present.
func (c *Config) Validate() error {
	var missing []string
	if c.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if c.SheetID == "" {
		missing = append(missing, "SHEET_ID")
	}
	if c.ServiceAccountEmail == "" {
		missing = append(missing, "GOOGLE_SERVICE_ACCOUNT_EMAIL")
	}
	if c.ServiceAccountKey == "" {
		missing = append(missing, "GOOGLE_PRIVATE_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("HISTORY_LIMIT must not be negative")
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}
