package resilience

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/vidsage/vidsage/pkg/observability"
)

// ErrCircuitOpen is returned when the breaker rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig configures a circuit breaker.
type BreakerConfig struct {
	MaxFailures  uint32        `mapstructure:"max_failures"`
	ResetTimeout time.Duration `mapstructure:"reset_timeout"`
	Interval     time.Duration `mapstructure:"interval"`
}

// DefaultBreakerConfig returns sensible breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures:  5,
		ResetTimeout: 60 * time.Second,
		Interval:     2 * time.Minute,
	}
}

// Breaker wraps gobreaker for upstream calls (transcript fetches and
// model requests) so a failing dependency sheds load quickly.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// NewBreaker creates a named circuit breaker.
func NewBreaker(name string, config BreakerConfig, logger observability.Logger) *Breaker {
	log := logger.WithPrefix("circuit-breaker")

	settings := gobreaker.Settings{
		Name:     name,
		Interval: config.Interval,
		Timeout:  config.ResetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state change", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	}

	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn under breaker protection. An open breaker yields
// ErrCircuitOpen without invoking fn.
func (b *Breaker) Execute(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCircuitOpen
	}
	return err
}

// State returns the breaker state as a string for diagnostics.
func (b *Breaker) State() string {
	return b.cb.State().String()
}
