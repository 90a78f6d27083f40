package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/vidsage/vidsage/pkg/observability"
)

// RetryConfig configures the store retry policy.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int `mapstructure:"max_attempts"`

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration `mapstructure:"initial_delay"`

	// MaxDelay caps the delay between retries.
	MaxDelay time.Duration `mapstructure:"max_delay"`

	// Multiplier is the backoff growth factor.
	Multiplier float64 `mapstructure:"multiplier"`
}

// DefaultRetryConfig returns the standard store retry policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}

// Retrier executes persistence operations with bounded retry and
// exponential backoff. Transient connection failures are retried up to
// MaxAttempts total attempts, then surfaced as StoreUnavailableError
// wrapping the last error. Anything else propagates immediately.
type Retrier struct {
	config RetryConfig
	logger observability.Logger
}

// NewRetrier creates a Retrier.
func NewRetrier(config RetryConfig, logger observability.Logger) *Retrier {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.Multiplier <= 1 {
		config.Multiplier = 2.0
	}
	return &Retrier{config: config, logger: logger.WithPrefix("store-retry")}
}

// Do runs fn under the retry policy. Context cancellation aborts any
// pending backoff wait.
func (r *Retrier) Do(ctx context.Context, op string, fn func() error) error {
	attempts := 0

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.config.InitialDelay
	b.MaxInterval = r.config.MaxDelay
	b.Multiplier = r.config.Multiplier
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.config.MaxAttempts-1)), ctx)

	err := backoff.Retry(func() error {
		attempts++
		err := fn()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		r.logger.Warn("Transient store error, will retry", map[string]interface{}{
			"operation": op,
			"attempt":   attempts,
			"error":     err.Error(),
		})
		return err
	}, policy)

	if err == nil {
		return nil
	}

	// backoff returns Permanent errors and context errors unwrapped;
	// only exhausted transient errors get the unavailable wrapper.
	if IsTransient(err) {
		r.logger.Error("Store retries exhausted", map[string]interface{}{
			"operation": op,
			"attempts":  attempts,
		})
		return &StoreUnavailableError{Attempts: attempts, Err: err}
	}
	return err
}
