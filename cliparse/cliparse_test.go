// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"testing"
	"time"
)

func TestParseFlags_EnvVars(t *testing.T) {
	// Set env vars
	os.Setenv("PORT", "9000")
	os.Setenv("DATABASE_URL", "postgres://test")
	os.Setenv("SESSION_SECRET", "test-secret")
	os.Setenv("SESSION_TTL", "30m")
	os.Setenv("CORS_ORIGINS", "http://localhost:5173, https://example.com")
	os.Setenv("SECURE_COOKIES", "true")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected default database type postgres, got %q", cfg.DatabaseType)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("expected session ttl 30m, got %s", cfg.SessionTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://example.com" {
		t.Errorf("unexpected CORS origins %v", cfg.CORSOrigins)
	}
	if !cfg.SecureCookies {
		t.Error("expected secure cookies")
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	os.Setenv("PORT", "9000")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-t", "sqlite", "-session-secret", "s1"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected sqlite, got %q", cfg.DatabaseType)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("expected default session ttl 1h, got %s", cfg.SessionTTL)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing database url", map[string]string{"SESSION_SECRET": "s"}, nil},
		{"missing session secret", map[string]string{"DATABASE_URL": "postgres://x"}, nil},
		{"bad port", map[string]string{"PORT": "abc", "DATABASE_URL": "postgres://x", "SESSION_SECRET": "s"}, nil},
		{"bad database type", map[string]string{"DATABASE_URL": "x", "SESSION_SECRET": "s"}, []string{"-t", "mysql"}},
		{"bad ttl", map[string]string{"DATABASE_URL": "x", "SESSION_SECRET": "s", "SESSION_TTL": "soon"}, nil},
		{"bad secure cookies", map[string]string{"DATABASE_URL": "x", "SESSION_SECRET": "s", "SECURE_COOKIES": "maybe"}, nil},
		{"negative ttl", map[string]string{"DATABASE_URL": "x", "SESSION_SECRET": "s"}, []string{"-session-ttl", "-5m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			defer os.Clearenv()
			for k, v := range tt.env {
				os.Setenv(k, v)
			}
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
