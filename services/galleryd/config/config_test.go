package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "galleryd.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
listen: ":9090"
genesis: ./genesis.toml
auth:
  enabled: true
  hmac_secret: s3cret
  clock_skew: 30s
emission:
  schedule: "@every 10s"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddress != ":9090" || cfg.GenesisFile != "./genesis.toml" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Auth.ClockSkew.Duration != 30*time.Second {
		t.Fatalf("unexpected clock skew: %s", cfg.Auth.ClockSkew)
	}
	if cfg.Accounts.Gallery != "gallery" || cfg.Accounts.Control != "control" {
		t.Fatalf("account defaults not applied: %+v", cfg.Accounts)
	}
	if cfg.Journal.Driver != "sqlite" || cfg.Journal.DSN == "" {
		t.Fatalf("journal defaults not applied: %+v", cfg.Journal)
	}
	if cfg.Emission.Schedule != "@every 10s" || cfg.RateLimit.Burst != 20 {
		t.Fatalf("unexpected emission or rate limit: %+v %+v", cfg.Emission, cfg.RateLimit)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]struct {
		body string
		want string
	}{
		"unknown field":      {body: "listen_addr: x\n", want: "decode config"},
		"secret missing":     {body: "auth:\n  enabled: true\n", want: "hmac_secret"},
		"driver unsupported": {body: "journal:\n  driver: mysql\n  dsn: x\n", want: "unsupported driver"},
		"postgres needs dsn": {body: "journal:\n  driver: postgres\n", want: "dsn required"},
		"same accounts":      {body: "accounts:\n  gallery: sys\n  control: sys\n", want: "must differ"},
		"bad duration":       {body: "auth:\n  clock_skew: soon\n", want: "parse duration"},
		"webhook secret":     {body: "webhook:\n  url: http://hooks.example\n", want: "webhook: secret"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q, got %v", tt.want, err)
			}
		})
	}
}
