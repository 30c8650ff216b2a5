package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_NAME", "hire")
	t.Setenv("APP_ENV", "test")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("APP_NAME", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("JWT_ACCESS_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, errMissingRequiredEnv) {
		t.Fatalf("expected errMissingRequiredEnv, got %v", err)
	}
	for _, key := range []string{"APP_NAME", "APP_ENV", "JWT_ACCESS_SECRET"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in error, got %v", key, err)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	for _, key := range []string{
		"RANKING_PROVIDER", "RANKING_TIMEOUT", "RANKING_BREAKER_FAILURES",
		"SEARCH_CACHE_TTL", "SEARCH_PREFILTER_LIMIT", "SEARCH_SERIALIZE_WORKERS",
		"REDIS_HOST", "REDIS_PORT", "REDIS_TTL", "JWT_ACCESS_EXPIRES_IN", "DB_SSL_MODE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Ranking.Provider != "" {
		t.Fatalf("expected no ranking provider, got %q", cfg.Ranking.Provider)
	}
	if cfg.Ranking.Timeout != 20*time.Second || cfg.Ranking.BreakerFailures != 3 {
		t.Fatalf("unexpected ranking defaults: %+v", cfg.Ranking)
	}
	if cfg.Search.PrefilterLimit != 20 || cfg.Search.SerializeWorkers != 8 || cfg.Search.CacheTTL != time.Minute {
		t.Fatalf("unexpected search defaults: %+v", cfg.Search)
	}
	if cfg.Redis.Host != "localhost" || cfg.Redis.Port != "6379" || cfg.Redis.TTL != 600*time.Second {
		t.Fatalf("unexpected redis defaults: %+v", cfg.Redis)
	}
	if cfg.JWT.AccessExpiresIn != time.Hour {
		t.Fatalf("unexpected jwt expiry: %v", cfg.JWT.AccessExpiresIn)
	}
	if cfg.Database.DBSSLMode != "disable" {
		t.Fatalf("unexpected ssl mode: %q", cfg.Database.DBSSLMode)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("RANKING_PROVIDER", " OpenAI ")
	t.Setenv("RANKING_TIMEOUT", "5s")
	t.Setenv("SEARCH_CACHE_TTL", "90")
	t.Setenv("SEARCH_PREFILTER_LIMIT", "not-a-number")
	t.Setenv("DB_POOL_MAX_CONNS", "12")
	t.Setenv("LOG_JSON", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Ranking.Provider != "openai" {
		t.Fatalf("expected normalized provider, got %q", cfg.Ranking.Provider)
	}
	if cfg.Ranking.Timeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v", cfg.Ranking.Timeout)
	}
	if cfg.Search.CacheTTL != 90*time.Second {
		t.Fatalf("expected bare seconds to parse, got %v", cfg.Search.CacheTTL)
	}
	if cfg.Search.PrefilterLimit != 20 {
		t.Fatalf("invalid numbers fall back to defaults, got %d", cfg.Search.PrefilterLimit)
	}
	if cfg.Database.PoolMaxConns != 12 {
		t.Fatalf("expected 12 max conns, got %d", cfg.Database.PoolMaxConns)
	}
	if !cfg.Log.JSON || cfg.Log.Debug {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
}
