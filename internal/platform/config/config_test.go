package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DatabaseURL:        "postgres://localhost/pms",
		DBMaxConns:         10,
		SessionTTL:         time.Hour,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 60,
		Environment:        "development",
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ADDR", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg := Load()
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.SessionTTL != 8*time.Hour {
		t.Fatalf("expected default session ttl, got %v", cfg.SessionTTL)
	}
	if cfg.RateLimitPerMinute != 60 {
		t.Fatalf("expected fallback rate limit, got %d", cfg.RateLimitPerMinute)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("REMINDER_WINDOW", "48h")
	t.Setenv("EMAIL_ENABLED", "true")

	cfg := Load()
	if cfg.Addr != ":9090" {
		t.Fatalf("expected overridden addr, got %q", cfg.Addr)
	}
	if cfg.ReminderWindow != 48*time.Hour {
		t.Fatalf("expected reminder window 48h, got %v", cfg.ReminderWindow)
	}
	if !cfg.EmailEnabled {
		t.Fatal("expected email enabled")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing database url", mutate: func(c *Config) { c.DatabaseURL = " " }, wantErr: true},
		{name: "production without jwt secret", mutate: func(c *Config) {
			c.Environment = "production"
			c.DataEncryptionKey = "key"
		}, wantErr: true},
		{name: "production without encryption key", mutate: func(c *Config) {
			c.Environment = "production"
			c.JWTSecret = "secret"
		}, wantErr: true},
		{name: "production complete", mutate: func(c *Config) {
			c.Environment = "production"
			c.JWTSecret = "secret"
			c.DataEncryptionKey = "key"
		}},
		{name: "tiny body limit", mutate: func(c *Config) { c.MaxBodyBytes = 10 }, wantErr: true},
		{name: "email without smtp host", mutate: func(c *Config) { c.EmailEnabled = true }, wantErr: true},
		{name: "zero session ttl", mutate: func(c *Config) { c.SessionTTL = 0 }, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}
