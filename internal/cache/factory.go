package cache

import (
	"time"

	"github.com/vidsage/vidsage/pkg/observability"
)

// Backend identifies which cache implementation was selected at startup.
type Backend string

const (
	BackendRedis  Backend = "redis"
	BackendMemory Backend = "memory"
)

// Config configures the cache layer.
type Config struct {
	Redis            RedisConfig `mapstructure:"redis"`
	MaxMemoryEntries int         `mapstructure:"max_memory_entries"`
	TTL              TTLConfig   `mapstructure:"ttl"`
}

// TTLConfig holds the per-kind entry lifetimes.
type TTLConfig struct {
	Index        time.Duration `mapstructure:"index"`
	QA           time.Duration `mapstructure:"qa"`
	MCQ          time.Duration `mapstructure:"mcq"`
	Summary      time.Duration `mapstructure:"summary"`
	ChatSessions time.Duration `mapstructure:"chat_sessions"`
	ChatMessages time.Duration `mapstructure:"chat_messages"`
}

// DefaultTTLConfig returns the standard entry lifetimes.
func DefaultTTLConfig() TTLConfig {
	return TTLConfig{
		Index:        time.Hour,
		QA:           time.Hour,
		MCQ:          time.Hour,
		Summary:      time.Hour,
		ChatSessions: 24 * time.Hour,
		ChatMessages: time.Hour,
	}
}

// New selects the cache backend once, at startup. Redis is preferred;
// if the liveness ping fails the service degrades to the in-memory
// backend and stays there for the life of the process.
func New(cfg Config, logger observability.Logger) (Cache, Backend) {
	log := logger.WithPrefix("cache")

	redisCache, err := NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn("Redis unreachable, falling back to in-memory cache", map[string]interface{}{
			"address": cfg.Redis.Address,
			"error":   err.Error(),
		})
		return NewMemoryCache(cfg.MaxMemoryEntries), BackendMemory
	}

	log.Info("Using Redis cache backend", map[string]interface{}{
		"address": cfg.Redis.Address,
	})
	return redisCache, BackendRedis
}
