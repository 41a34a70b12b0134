package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kode4food/banquet/pkg/api"
)

type (
	// Config holds configuration settings for the catering engine
	Config struct {
		// API Server
		APIHost  string
		APIPort  int
		LogLevel string

		// Recipe catalog store
		Catalog StoreConfig

		// Research provider
		Chat ChatConfig

		// Report artifact
		BucketURL string
		ReportKey string

		// Capability dispatch. When CapabilityBaseURL is set, capabilities
		// are invoked over HTTP instead of in process
		CapabilityBaseURL string
		CapabilityTimeout int64

		// Engine
		RunTimeout      int64
		RunCacheSize    int
		SeedCatalog     bool
		ShutdownTimeout time.Duration
	}

	// StoreConfig holds Redis connection settings for the recipe catalog
	StoreConfig struct {
		Addr     string
		Password string
		DB       int
		Prefix   string
	}

	// ChatConfig holds settings for the OpenAI-compatible research provider
	ChatConfig struct {
		BaseURL string
		APIKey  string
		Model   string
	}
)

const (
	DefaultRunTimeout        = 130 * api.Second
	DefaultCapabilityTimeout = 30 * api.Second
	DefaultShutdownTimeout   = 10 * time.Second

	DefaultAPIPort = 8080
	DefaultAPIHost = "0.0.0.0"
	MaxTCPPort     = 65535

	DefaultRedisEndpoint = "localhost:6379"
	DefaultRedisPrefix   = "banquet"
	DefaultRedisDB       = 0

	DefaultBucketURL = "file:///var/tmp/banquet?create_dir=true"
	DefaultReportKey = "catering_result.txt"

	DefaultChatBaseURL = "https://api.openai.com/v1"
	DefaultChatModel   = "gpt-4o-mini"

	DefaultRunCacheSize = 256

	MaxRunCacheSize      = 1_000_000
	MaxRunTimeout        = 24 * 60 * api.Minute // 1 day in ms
	MaxCapabilityTimeout = 60 * api.Minute      // 1 hour in ms
)

var (
	ErrInvalidAPIPort           = errors.New("invalid API port")
	ErrInvalidRunTimeout        = errors.New("run timeout must be positive")
	ErrInvalidCapabilityTimeout = errors.New(
		"capability timeout must be positive",
	)
	ErrInvalidRunCacheSize = errors.New("run cache size must be positive")
	ErrMissingCatalogAddr  = errors.New("catalog redis address is required")
	ErrMissingBucketURL    = errors.New("report bucket URL is required")
	ErrMissingReportKey    = errors.New("report key is required")
	ErrMissingChatModel    = errors.New("chat model is required")
)

// NewDefaultConfig creates a configuration with sensible defaults for the
// engine, catalog store, research provider, and report artifact
func NewDefaultConfig() *Config {
	return &Config{
		APIPort: DefaultAPIPort,
		APIHost: DefaultAPIHost,
		Catalog: StoreConfig{
			Addr:     DefaultRedisEndpoint,
			Password: "",
			DB:       DefaultRedisDB,
			Prefix:   DefaultRedisPrefix,
		},
		Chat: ChatConfig{
			BaseURL: DefaultChatBaseURL,
			Model:   DefaultChatModel,
		},
		BucketURL:         DefaultBucketURL,
		ReportKey:         DefaultReportKey,
		CapabilityTimeout: DefaultCapabilityTimeout,
		RunTimeout:        DefaultRunTimeout,
		RunCacheSize:      DefaultRunCacheSize,
		SeedCatalog:       true,
		ShutdownTimeout:   DefaultShutdownTimeout,
		LogLevel:          "info",
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed.
func (c *Config) LoadFromEnv() error {
	loadStoreFromEnv(&c.Catalog)
	loadChatFromEnv(&c.Chat)

	if apiHost := os.Getenv("API_HOST"); apiHost != "" {
		c.APIHost = apiHost
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}
	if bucketURL := os.Getenv("BUCKET_URL"); bucketURL != "" {
		c.BucketURL = bucketURL
	}
	if reportKey := os.Getenv("REPORT_KEY"); reportKey != "" {
		c.ReportKey = reportKey
	}
	if baseURL := os.Getenv("CAPABILITY_BASE_URL"); baseURL != "" {
		c.CapabilityBaseURL = baseURL
	}
	if seed := os.Getenv("SEED_CATALOG"); seed != "" {
		if b, err := strconv.ParseBool(seed); err == nil {
			c.SeedCatalog = b
		}
	}

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}

	if err := loadEnvInt(
		"RUN_TIMEOUT", &c.RunTimeout, 0, MaxRunTimeout,
	); err != nil {
		return err
	}
	if err := loadEnvInt(
		"CAPABILITY_TIMEOUT", &c.CapabilityTimeout, 0, MaxCapabilityTimeout,
	); err != nil {
		return err
	}
	if err := loadEnvInt(
		"RUN_CACHE_SIZE", &c.RunCacheSize, 0, MaxRunCacheSize,
	); err != nil {
		return err
	}
	if err := loadEnvDuration(
		"SHUTDOWN_TIMEOUT", &c.ShutdownTimeout,
	); err != nil {
		return err
	}

	return nil
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}

	if c.RunTimeout <= 0 {
		return ErrInvalidRunTimeout
	}

	if c.CapabilityTimeout <= 0 {
		return ErrInvalidCapabilityTimeout
	}

	if c.RunCacheSize <= 0 {
		return ErrInvalidRunCacheSize
	}

	if c.Catalog.Addr == "" {
		return ErrMissingCatalogAddr
	}

	if c.BucketURL == "" {
		return ErrMissingBucketURL
	}

	if c.ReportKey == "" {
		return ErrMissingReportKey
	}

	if c.Chat.Model == "" {
		return ErrMissingChatModel
	}

	return nil
}

func loadStoreFromEnv(s *StoreConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		s.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		s.Password = password
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			s.DB = db
		}
	}
	if prefix := os.Getenv("REDIS_PREFIX"); prefix != "" {
		s.Prefix = prefix
	}
}

func loadChatFromEnv(ch *ChatConfig) {
	if baseURL := os.Getenv("CHAT_BASE_URL"); baseURL != "" {
		ch.BaseURL = baseURL
	}
	if model := os.Getenv("CHAT_MODEL"); model != "" {
		ch.Model = model
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		ch.APIKey = key
	}
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max). Returns an error if
// the value cannot be parsed or falls outside the valid range.
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}

// loadEnvDuration reads key from the environment and parses it with
// time.ParseDuration, e.g. "30s" or "2m"
func loadEnvDuration(key string, dst *time.Duration) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil || v <= 0 {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	*dst = v
	return nil
}
