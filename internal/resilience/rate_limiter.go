package resilience

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/vidsage/vidsage/pkg/observability"
)

// RateLimiterConfig configures the model-call rate limiter.
type RateLimiterConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size"`
}

// DefaultRateLimiterConfig returns limits suitable for a single
// upstream model API key.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 5,
		BurstSize:         10,
	}
}

// RateLimiter throttles outbound model calls.
type RateLimiter struct {
	limiter *rate.Limiter
	logger  observability.Logger
}

// NewRateLimiter creates a rate limiter.
func NewRateLimiter(config RateLimiterConfig, logger observability.Logger) *RateLimiter {
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 5
	}
	if config.BurstSize <= 0 {
		config.BurstSize = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.BurstSize),
		logger:  logger.WithPrefix("rate-limiter"),
	}
}

// Wait blocks until a request is allowed or the context ends.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.limiter.Wait(ctx)
}

// Allow reports whether a request is allowed right now.
func (rl *RateLimiter) Allow() bool {
	return rl.limiter.Allow()
}
