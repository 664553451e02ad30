package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kitbuilder587/nosible-go/internal/ratelimit"
)

var envVars = []string{
	"NOSIBLE_API_KEY", "NOSIBLE_BASE_URL", "NOSIBLE_TIMEOUT_SEC", "NOSIBLE_RETRIES",
	"NOSIBLE_CONCURRENCY", "LLM_API_KEY", "LLM_BASE_URL", "LLM_MODEL", "LOG_LEVEL",
	"CACHE_TYPE", "CACHE_TTL_SEC", "REDIS_ADDR", "METRICS_ADDR", "DATABASE_URL",
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr error
	}{
		{
			name:    "valid config",
			envVars: map[string]string{"NOSIBLE_API_KEY": "test|abc"},
		},
		{
			name:    "missing api key",
			envVars: map[string]string{},
			wantErr: ErrMissingAPIKey,
		},
		{
			name:    "invalid plan prefix",
			envVars: map[string]string{"NOSIBLE_API_KEY": "gold|abc"},
			wantErr: ratelimit.ErrInvalidPlan,
		},
		{
			name:    "invalid cache type",
			envVars: map[string]string{"NOSIBLE_API_KEY": "pro|abc", "CACHE_TYPE": "memcached"},
			wantErr: ErrInvalidCacheType,
		},
		{
			name:    "redis without address",
			envVars: map[string]string{"NOSIBLE_API_KEY": "pro|abc", "CACHE_TYPE": "redis"},
			wantErr: ErrMissingRedisAddr,
		},
		{
			name:    "zero concurrency",
			envVars: map[string]string{"NOSIBLE_API_KEY": "pro|abc", "NOSIBLE_CONCURRENCY": "0"},
			wantErr: ErrInvalidConcurrency,
		},
		{
			name:    "redis with address",
			envVars: map[string]string{"NOSIBLE_API_KEY": "pro|abc", "CACHE_TYPE": "REDIS", "REDIS_ADDR": "localhost:6379"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load()

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error = %v", err)
			}
			if cfg == nil {
				t.Error("Load() returned nil config")
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("NOSIBLE_API_KEY", "test|abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %v, want info", cfg.Log.Level)
	}
	if cfg.Nosible.Timeout != 30*time.Second {
		t.Errorf("Nosible.Timeout = %v, want 30s", cfg.Nosible.Timeout)
	}
	if cfg.Nosible.Retries != 5 {
		t.Errorf("Nosible.Retries = %d, want 5", cfg.Nosible.Retries)
	}
	if cfg.Nosible.Concurrency != 10 {
		t.Errorf("Nosible.Concurrency = %d, want 10", cfg.Nosible.Concurrency)
	}
	if cfg.LLM.Model != "openai/gpt-4o" {
		t.Errorf("LLM.Model = %q", cfg.LLM.Model)
	}
	if cfg.Cache.Type != "none" {
		t.Errorf("Cache.Type = %q, want none", cfg.Cache.Type)
	}

	plan, err := cfg.Plan()
	if err != nil || plan != ratelimit.PlanFree {
		t.Errorf("Plan() = %v, %v", plan, err)
	}
}

func TestGetEnvIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		envValue   string
		defaultVal int
		want       int
	}{
		{"valid int", "42", 10, 42},
		{"empty string", "", 10, 10},
		{"invalid int", "abc", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.envValue)

			got := getEnvIntOrDefault("TEST_INT", tt.defaultVal)
			if got != tt.want {
				t.Errorf("getEnvIntOrDefault() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadEnvFiles(t *testing.T) {
	clearEnvVars(t)
	dir := t.TempDir()

	path := filepath.Join(dir, ".env")
	content := "NOSIBLE_API_KEY=basic|fromfile\nLOG_LEVEL=debug\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOG_LEVEL", "warn")

	if err := LoadEnvFiles(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadEnvFiles() error = %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("NOSIBLE_API_KEY") })

	if got := os.Getenv("NOSIBLE_API_KEY"); got != "basic|fromfile" {
		t.Errorf("NOSIBLE_API_KEY = %q", got)
	}
	if got := os.Getenv("LOG_LEVEL"); got != "warn" {
		t.Errorf("LOG_LEVEL = %q, existing env must win", got)
	}
}
