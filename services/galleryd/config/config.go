package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration to support YAML unmarshalling.
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses human readable duration strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return nil
	}
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be string")
	}
	raw := value.Value
	if raw == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

// Config captures runtime configuration for galleryd.
type Config struct {
	ListenAddress string          `yaml:"listen"`
	Environment   string          `yaml:"environment"`
	DataDir       string          `yaml:"data_dir"`
	GenesisFile   string          `yaml:"genesis"`
	Accounts      AccountsConfig  `yaml:"accounts"`
	Journal       JournalConfig   `yaml:"journal"`
	Auth          AuthConfig      `yaml:"auth"`
	RateLimit     RateLimitConfig `yaml:"rate_limit"`
	Emission      EmissionConfig  `yaml:"emission"`
	Webhook       WebhookConfig   `yaml:"webhook"`
	Logging       LoggingConfig   `yaml:"logging"`
	Telemetry     TelemetryConfig `yaml:"telemetry"`
}

// AccountsConfig names the system accounts holding undistributed rewards.
type AccountsConfig struct {
	Gallery string `yaml:"gallery"`
	Control string `yaml:"control"`
}

// JournalConfig selects the relational store events and ticks are
// journaled to.
type JournalConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// AuthConfig configures bearer token verification.
type AuthConfig struct {
	Enabled    bool     `yaml:"enabled"`
	HMACSecret string   `yaml:"hmac_secret"`
	Issuer     string   `yaml:"issuer"`
	Audience   string   `yaml:"audience"`
	ClockSkew  Duration `yaml:"clock_skew"`
}

// RateLimitConfig bounds how often one caller may write.
type RateLimitConfig struct {
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
	Burst             int     `yaml:"burst"`
}

// EmissionConfig schedules the emission check.
type EmissionConfig struct {
	Schedule string `yaml:"schedule"`
}

// WebhookConfig enables signed tick notifications when URL is set.
type WebhookConfig struct {
	URL         string   `yaml:"url"`
	Secret      string   `yaml:"secret"`
	MaxAttempts int      `yaml:"max_attempts"`
	MinBackoff  Duration `yaml:"min_backoff"`
	MaxBackoff  Duration `yaml:"max_backoff"`
}

// LoggingConfig mirrors logging.Options.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// TelemetryConfig mirrors the OTLP exporter options.
type TelemetryConfig struct {
	Endpoint    string            `yaml:"endpoint"`
	Insecure    bool              `yaml:"insecure"`
	Headers     map[string]string `yaml:"headers"`
	Traces      bool              `yaml:"traces"`
	Metrics     bool              `yaml:"metrics"`
	SampleRatio float64           `yaml:"sample_ratio"`
}

// Load reads configuration from the supplied path.
func Load(path string) (Config, error) {
	cfg := Config{}
	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()
	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	applyDefaults(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":7080"
	}
	if cfg.Environment == "" {
		cfg.Environment = "dev"
	}
	if cfg.Accounts.Gallery == "" {
		cfg.Accounts.Gallery = "gallery"
	}
	if cfg.Accounts.Control == "" {
		cfg.Accounts.Control = "control"
	}
	if cfg.Journal.Driver == "" {
		cfg.Journal.Driver = "sqlite"
	}
	if cfg.Journal.DSN == "" && cfg.Journal.Driver == "sqlite" {
		cfg.Journal.DSN = "file:galleryd-journal.sqlite?_busy_timeout=5000&_journal_mode=WAL"
	}
	if cfg.Auth.ClockSkew.Duration == 0 {
		cfg.Auth.ClockSkew.Duration = 2 * time.Minute
	}
	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit.RequestsPerMinute = 120
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 20
	}
	if cfg.Emission.Schedule == "" {
		cfg.Emission.Schedule = "@every 1m"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func validate(cfg Config) error {
	if cfg.Accounts.Gallery == cfg.Accounts.Control {
		return fmt.Errorf("accounts: gallery and control must differ")
	}
	switch strings.ToLower(cfg.Journal.Driver) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("journal: unsupported driver %q", cfg.Journal.Driver)
	}
	if strings.TrimSpace(cfg.Journal.DSN) == "" {
		return fmt.Errorf("journal: dsn required")
	}
	if cfg.Auth.Enabled && strings.TrimSpace(cfg.Auth.HMACSecret) == "" {
		return fmt.Errorf("auth: hmac_secret required when enabled")
	}
	if strings.TrimSpace(cfg.Webhook.URL) != "" && strings.TrimSpace(cfg.Webhook.Secret) == "" {
		return fmt.Errorf("webhook: secret required when url is set")
	}
	if cfg.RateLimit.RequestsPerMinute < 0 || cfg.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit: values must be non-negative")
	}
	if cfg.Telemetry.SampleRatio < 0 || cfg.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry: sample_ratio must be within [0,1]")
	}
	return nil
}
