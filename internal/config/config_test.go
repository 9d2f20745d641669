package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_XAPIConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("disabled by default", func(t *testing.T) {
		t.Setenv("XAPI_ENABLED", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.XAPIEnabled {
			t.Fatalf("expected XAPIEnabled=false by default")
		}
	})

	t.Run("enabled requires bearer token", func(t *testing.T) {
		t.Setenv("XAPI_ENABLED", "true")
		t.Setenv("XAPI_BEARER_TOKEN", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when XAPI_ENABLED=true without XAPI_BEARER_TOKEN")
		}
	})

	t.Run("enabled with valid values", func(t *testing.T) {
		t.Setenv("XAPI_ENABLED", "true")
		t.Setenv("XAPI_BEARER_TOKEN", "token-123")
		t.Setenv("XAPI_TIMEOUT", "9s")
		t.Setenv("XAPI_MAX_RETRIES", "2")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.XAPIEnabled {
			t.Fatalf("expected XAPIEnabled=true")
		}
		if cfg.XAPIBearerToken != "token-123" {
			t.Fatalf("unexpected XAPIBearerToken")
		}
		if cfg.XAPITimeout != 9*time.Second {
			t.Fatalf("unexpected XAPITimeout: %s", cfg.XAPITimeout)
		}
		if cfg.XAPIMaxRetries != 2 {
			t.Fatalf("unexpected XAPIMaxRetries: %d", cfg.XAPIMaxRetries)
		}
	})
}

func TestLoad_OddsFeedRequiresAPIKeyWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("ODDSFEED_ENABLED", "true")
	t.Setenv("ODDSFEED_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when ODDSFEED_ENABLED=true without ODDSFEED_API_KEY")
	}
}

func TestLoad_CollectorConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("COLLECTOR_CYCLE_INTERVAL", "")
		t.Setenv("COLLECTOR_LOOKBACK", "")
		t.Setenv("COLLECTOR_QUOTA_MAP", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CollectorEnabled {
			t.Fatalf("expected collector enabled by default")
		}
		if cfg.CollectorCycleInterval != 15*time.Minute {
			t.Fatalf("unexpected default cycle interval: %s", cfg.CollectorCycleInterval)
		}
		if cfg.CollectorLookback != 24*time.Hour {
			t.Fatalf("unexpected default lookback: %s", cfg.CollectorLookback)
		}
		if cfg.CollectorDefaultQuota != 30 {
			t.Fatalf("unexpected default quota: %d", cfg.CollectorDefaultQuota)
		}
	})

	t.Run("quota map parsing", func(t *testing.T) {
		t.Setenv("COLLECTOR_QUOTA_MAP", "x:40, bluesky:15")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.CollectorQuotaByPlatform["x"] != 40 {
			t.Fatalf("unexpected quota for x: %d", cfg.CollectorQuotaByPlatform["x"])
		}
		if cfg.CollectorQuotaByPlatform["bluesky"] != 15 {
			t.Fatalf("unexpected quota for bluesky: %d", cfg.CollectorQuotaByPlatform["bluesky"])
		}
	})

	t.Run("invalid quota map", func(t *testing.T) {
		t.Setenv("COLLECTOR_QUOTA_MAP", "x=40")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid COLLECTOR_QUOTA_MAP")
		}
	})

	t.Run("invalid cycle interval", func(t *testing.T) {
		t.Setenv("COLLECTOR_QUOTA_MAP", "")
		t.Setenv("COLLECTOR_CYCLE_INTERVAL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid COLLECTOR_CYCLE_INTERVAL")
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 30*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
	})
}

func TestLoad_JobIntervalDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.JobScheduleInterval != time.Hour {
		t.Fatalf("unexpected default schedule interval: %s", cfg.JobScheduleInterval)
	}
	if cfg.JobLiveInterval != time.Minute {
		t.Fatalf("unexpected default live interval: %s", cfg.JobLiveInterval)
	}
	if cfg.JobOddsInterval != 30*time.Minute {
		t.Fatalf("unexpected default odds interval: %s", cfg.JobOddsInterval)
	}
}
