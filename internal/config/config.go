// Package config loads application configuration from a YAML file and
// environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vidsage/vidsage/internal/api"
	"github.com/vidsage/vidsage/internal/cache"
	"github.com/vidsage/vidsage/internal/database"
	"github.com/vidsage/vidsage/internal/embedding"
	"github.com/vidsage/vidsage/internal/queue"
	"github.com/vidsage/vidsage/internal/resilience"
	"github.com/vidsage/vidsage/internal/transcript"
)

// Config holds the complete application configuration.
type Config struct {
	LogLevel   string                       `mapstructure:"log_level"`
	API        api.Config                   `mapstructure:"api"`
	Cache      cache.Config                 `mapstructure:"cache"`
	Database   database.Config              `mapstructure:"database"`
	Queue      queue.Config                 `mapstructure:"queue"`
	Gemini     embedding.Config             `mapstructure:"gemini"`
	Transcript transcript.FetcherConfig     `mapstructure:"transcript"`
	Retry      resilience.RetryConfig       `mapstructure:"retry"`
	Breaker    resilience.BreakerConfig     `mapstructure:"breaker"`
	RateLimit  resilience.RateLimiterConfig `mapstructure:"rate_limit"`
	Indexer    IndexerConfig                `mapstructure:"indexer"`
}

// IndexerConfig holds chunking and index-store settings.
type IndexerConfig struct {
	ChunkSize      int `mapstructure:"chunk_size"`
	ChunkOverlap   int `mapstructure:"chunk_overlap"`
	MaxLiveIndexes int `mapstructure:"max_live_indexes"`
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	configFile := os.Getenv("VIDSAGE_CONFIG_FILE")
	if configFile == "" {
		configFile = "configs/config.yaml"
	}
	v.SetConfigFile(configFile)

	// Environment variables prefixed with VIDSAGE_ override the file,
	// e.g. VIDSAGE_DATABASE_HOST, VIDSAGE_GEMINI_API_KEY.
	v.SetEnvPrefix("VIDSAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// The config file is optional when environment variables carry
		// the settings.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("gemini.api_key is required (VIDSAGE_GEMINI_API_KEY)")
	}
	if c.Indexer.ChunkSize <= 0 {
		return fmt.Errorf("indexer.chunk_size must be positive")
	}
	if c.Indexer.ChunkOverlap >= c.Indexer.ChunkSize {
		return fmt.Errorf("indexer.chunk_overlap must be smaller than indexer.chunk_size")
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	// API defaults
	v.SetDefault("api.listen_address", ":8080")
	v.SetDefault("api.read_timeout", 30*time.Second)
	v.SetDefault("api.write_timeout", 120*time.Second)
	v.SetDefault("api.idle_timeout", 90*time.Second)
	v.SetDefault("api.base_path", "/api/v1")
	v.SetDefault("api.enable_cors", true)
	v.SetDefault("api.log_requests", true)

	// Cache defaults
	v.SetDefault("cache.redis.address", "localhost:6379")
	v.SetDefault("cache.redis.database", 0)
	v.SetDefault("cache.redis.max_retries", 3)
	v.SetDefault("cache.redis.dial_timeout", 5*time.Second)
	v.SetDefault("cache.redis.read_timeout", 3*time.Second)
	v.SetDefault("cache.redis.write_timeout", 3*time.Second)
	v.SetDefault("cache.redis.pool_size", 10)
	v.SetDefault("cache.max_memory_entries", 4096)
	v.SetDefault("cache.ttl.index", time.Hour)
	v.SetDefault("cache.ttl.qa", time.Hour)
	v.SetDefault("cache.ttl.mcq", time.Hour)
	v.SetDefault("cache.ttl.summary", time.Hour)
	v.SetDefault("cache.ttl.chat_sessions", 24*time.Hour)
	v.SetDefault("cache.ttl.chat_messages", time.Hour)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "vidsage")
	v.SetDefault("database.username", "vidsage")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_lifetime", 5*time.Minute)

	// Task runner defaults
	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.queue_size", 256)
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.retry_base_delay", 60*time.Second)

	// Gemini defaults
	v.SetDefault("gemini.embed_model", "gemini-embedding-001")
	v.SetDefault("gemini.generate_model", "gemini-2.0-flash")
	v.SetDefault("gemini.request_timeout", 60*time.Second)
	v.SetDefault("gemini.max_retries", 3)

	// Transcript fetcher defaults
	v.SetDefault("transcript.base_url", "https://video.google.com/timedtext")
	v.SetDefault("transcript.timeout", 15*time.Second)
	v.SetDefault("transcript.languages", []string{"en", "en-US", "en-GB"})

	// Store retry defaults
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_delay", 100*time.Millisecond)
	v.SetDefault("retry.max_delay", 5*time.Second)
	v.SetDefault("retry.multiplier", 2.0)

	// Circuit breaker defaults
	v.SetDefault("breaker.max_failures", 5)
	v.SetDefault("breaker.reset_timeout", 60*time.Second)
	v.SetDefault("breaker.interval", 2*time.Minute)

	// Model rate limit defaults
	v.SetDefault("rate_limit.requests_per_second", 5)
	v.SetDefault("rate_limit.burst_size", 10)

	// Indexer defaults
	v.SetDefault("indexer.chunk_size", 2000)
	v.SetDefault("indexer.chunk_overlap", 150)
	v.SetDefault("indexer.max_live_indexes", 64)
}
