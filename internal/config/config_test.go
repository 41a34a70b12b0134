package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/kode4food/banquet/internal/assert"
	"github.com/kode4food/banquet/internal/config"
)

func TestConfigValidation(t *testing.T) {
	as := assert.New(t)

	t.Run("valid_default_config", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		as.ConfigValid(cfg)
	})

	tests := []struct {
		name          string
		configMod     func(*config.Config)
		errorContains string
	}{
		{
			name: "invalid_api_port_zero",
			configMod: func(c *config.Config) {
				c.APIPort = 0
			},
			errorContains: "invalid API port",
		},
		{
			name: "invalid_api_port_negative",
			configMod: func(c *config.Config) {
				c.APIPort = -1
			},
			errorContains: "invalid API port",
		},
		{
			name: "invalid_api_port_too_high",
			configMod: func(c *config.Config) {
				c.APIPort = 70000
			},
			errorContains: "invalid API port",
		},
		{
			name: "zero_run_timeout",
			configMod: func(c *config.Config) {
				c.RunTimeout = 0
			},
			errorContains: "run timeout must be positive",
		},
		{
			name: "zero_capability_timeout",
			configMod: func(c *config.Config) {
				c.CapabilityTimeout = 0
			},
			errorContains: "capability timeout must be positive",
		},
		{
			name: "zero_run_cache_size",
			configMod: func(c *config.Config) {
				c.RunCacheSize = 0
			},
			errorContains: "run cache size must be positive",
		},
		{
			name: "missing_catalog_addr",
			configMod: func(c *config.Config) {
				c.Catalog.Addr = ""
			},
			errorContains: "catalog redis address is required",
		},
		{
			name: "missing_bucket_url",
			configMod: func(c *config.Config) {
				c.BucketURL = ""
			},
			errorContains: "report bucket URL is required",
		},
		{
			name: "missing_report_key",
			configMod: func(c *config.Config) {
				c.ReportKey = ""
			},
			errorContains: "report key is required",
		},
		{
			name: "missing_chat_model",
			configMod: func(c *config.Config) {
				c.Chat.Model = ""
			},
			errorContains: "chat model is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewDefaultConfig()
			tt.configMod(cfg)
			as.ConfigInvalid(cfg, tt.errorContains)
		})
	}
}

func TestDefaultConfigValues(t *testing.T) {
	as := assert.New(t)

	cfg := config.NewDefaultConfig()

	as.Equal(config.DefaultAPIPort, cfg.APIPort)
	as.Equal("0.0.0.0", cfg.APIHost)
	as.Equal(config.DefaultRunTimeout, cfg.RunTimeout)
	as.Equal(config.DefaultCapabilityTimeout, cfg.CapabilityTimeout)
	as.Equal(config.DefaultShutdownTimeout, cfg.ShutdownTimeout)
	as.Equal(config.DefaultRedisEndpoint, cfg.Catalog.Addr)
	as.Equal(config.DefaultRedisPrefix, cfg.Catalog.Prefix)
	as.Equal(config.DefaultChatBaseURL, cfg.Chat.BaseURL)
	as.Equal(config.DefaultChatModel, cfg.Chat.Model)
	as.Equal(config.DefaultReportKey, cfg.ReportKey)
	as.Equal(config.DefaultRunCacheSize, cfg.RunCacheSize)
	as.True(cfg.SeedCatalog)
	as.Equal("info", cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	setEnv := func(t *testing.T, vars map[string]string) {
		t.Helper()
		for key, value := range vars {
			_ = os.Setenv(key, value)
			t.Cleanup(func() { _ = os.Unsetenv(key) })
		}
	}

	t.Run("load_all_fields", func(t *testing.T) {
		as := assert.New(t)
		setEnv(t, map[string]string{
			"API_HOST":            "127.0.0.1",
			"API_PORT":            "9090",
			"LOG_LEVEL":           "debug",
			"REDIS_ADDR":          "redis.example.com:6379",
			"REDIS_PASSWORD":      "secret123",
			"REDIS_DB":            "5",
			"REDIS_PREFIX":        "custom-prefix",
			"CHAT_BASE_URL":       "http://localhost:11434/v1",
			"CHAT_MODEL":          "llama3",
			"OPENAI_API_KEY":      "sk-test",
			"BUCKET_URL":          "mem://",
			"REPORT_KEY":          "result.txt",
			"CAPABILITY_BASE_URL": "http://tools:8081",
			"RUN_TIMEOUT":         "60000",
			"CAPABILITY_TIMEOUT":  "5000",
			"RUN_CACHE_SIZE":      "32",
			"SEED_CATALOG":        "false",
			"SHUTDOWN_TIMEOUT":    "15s",
		})

		cfg := config.NewDefaultConfig()
		as.NoError(cfg.LoadFromEnv())

		as.Equal("127.0.0.1", cfg.APIHost)
		as.Equal(9090, cfg.APIPort)
		as.Equal("debug", cfg.LogLevel)
		as.Equal("redis.example.com:6379", cfg.Catalog.Addr)
		as.Equal("secret123", cfg.Catalog.Password)
		as.Equal(5, cfg.Catalog.DB)
		as.Equal("custom-prefix", cfg.Catalog.Prefix)
		as.Equal("http://localhost:11434/v1", cfg.Chat.BaseURL)
		as.Equal("llama3", cfg.Chat.Model)
		as.Equal("sk-test", cfg.Chat.APIKey)
		as.Equal("mem://", cfg.BucketURL)
		as.Equal("result.txt", cfg.ReportKey)
		as.Equal("http://tools:8081", cfg.CapabilityBaseURL)
		as.Equal(int64(60000), cfg.RunTimeout)
		as.Equal(int64(5000), cfg.CapabilityTimeout)
		as.Equal(32, cfg.RunCacheSize)
		as.False(cfg.SeedCatalog)
		as.Equal(15*time.Second, cfg.ShutdownTimeout)
		as.ConfigValid(cfg)
	})

	t.Run("invalid_port_rejected", func(t *testing.T) {
		as := assert.New(t)
		setEnv(t, map[string]string{"API_PORT": "not_a_number"})

		cfg := config.NewDefaultConfig()
		as.ErrorContains(cfg.LoadFromEnv(), "invalid API_PORT")
	})

	t.Run("out_of_range_timeout_rejected", func(t *testing.T) {
		as := assert.New(t)
		setEnv(t, map[string]string{"RUN_TIMEOUT": "-5"})

		cfg := config.NewDefaultConfig()
		as.ErrorContains(cfg.LoadFromEnv(), "out of range")
	})

	t.Run("invalid_shutdown_timeout_rejected", func(t *testing.T) {
		as := assert.New(t)
		setEnv(t, map[string]string{"SHUTDOWN_TIMEOUT": "soon"})

		cfg := config.NewDefaultConfig()
		as.ErrorContains(cfg.LoadFromEnv(), "invalid SHUTDOWN_TIMEOUT")
	})

	t.Run("invalid_redis_db_ignored", func(t *testing.T) {
		as := assert.New(t)
		setEnv(t, map[string]string{"REDIS_DB": "not_a_number"})

		cfg := config.NewDefaultConfig()
		as.NoError(cfg.LoadFromEnv())
		as.Equal(config.DefaultRedisDB, cfg.Catalog.DB)
	})

	t.Run("invalid_seed_flag_ignored", func(t *testing.T) {
		as := assert.New(t)
		setEnv(t, map[string]string{"SEED_CATALOG": "maybe"})

		cfg := config.NewDefaultConfig()
		as.NoError(cfg.LoadFromEnv())
		as.True(cfg.SeedCatalog)
	})

	t.Run("empty_env_keeps_defaults", func(t *testing.T) {
		as := assert.New(t)

		cfg := config.NewDefaultConfig()
		as.NoError(cfg.LoadFromEnv())
		as.Equal(config.DefaultRunTimeout, cfg.RunTimeout)
	})
}
