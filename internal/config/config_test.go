package config

import (
	"testing"
	"time"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("API_KEY", "test-omdb-key")
}

func TestLoad_RequiredVarsSet_ReturnsConfig(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.OMDbAPIKey != "test-omdb-key" {
		t.Errorf("OMDbAPIKey = %q, want %q", cfg.OMDbAPIKey, "test-omdb-key")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	setRequiredEnvVars(t)
	for _, key := range []string{"DB_NAME", "OMDB_API_URL", "FETCH_TIMEOUT", "FETCH_MAX_SIZE", "RATE_LIMIT_PER_MINUTE", "SERVER_PORT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.DBName != "moviweb.db" {
		t.Errorf("DBName = %q, want %q", cfg.DBName, "moviweb.db")
	}
	if cfg.OMDbAPIURL != "https://www.omdbapi.com/" {
		t.Errorf("OMDbAPIURL = %q, want %q", cfg.OMDbAPIURL, "https://www.omdbapi.com/")
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout = %v, want %v", cfg.FetchTimeout, 10*time.Second)
	}
	if cfg.FetchMaxSize != 1048576 {
		t.Errorf("FetchMaxSize = %d, want %d", cfg.FetchMaxSize, 1048576)
	}
	if cfg.RateLimitPerMinute != 120 {
		t.Errorf("RateLimitPerMinute = %d, want %d", cfg.RateLimitPerMinute, 120)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
}

func TestLoad_OverrideValues(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("DB_NAME", "test.db")
	t.Setenv("OMDB_API_URL", "http://omdb.example.com/")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.DBName != "test.db" {
		t.Errorf("DBName = %q, want %q", cfg.DBName, "test.db")
	}
	if cfg.OMDbAPIURL != "http://omdb.example.com/" {
		t.Errorf("OMDbAPIURL = %q, want %q", cfg.OMDbAPIURL, "http://omdb.example.com/")
	}
	if cfg.FetchTimeout != 3*time.Second {
		t.Errorf("FetchTimeout = %v, want %v", cfg.FetchTimeout, 3*time.Second)
	}
	if cfg.RateLimitPerMinute != 30 {
		t.Errorf("RateLimitPerMinute = %d, want %d", cfg.RateLimitPerMinute, 30)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "9090")
	}
}

func TestLoad_MissingAPIKey_ReturnsError(t *testing.T) {
	t.Setenv("API_KEY", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when API_KEY is not set, got nil")
	}
}

func TestLoad_InvalidOptionalValue_FallsBackToDefault(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("FETCH_TIMEOUT", "not-a-duration")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout = %v, want default %v", cfg.FetchTimeout, 10*time.Second)
	}
	if cfg.RateLimitPerMinute != 120 {
		t.Errorf("RateLimitPerMinute = %d, want default %d", cfg.RateLimitPerMinute, 120)
	}
}
