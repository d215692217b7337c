package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/ehr/trialviz/internal/population"
)

// ErrUnavailable is returned while a loader's breaker is open.
var ErrUnavailable = errors.New("data provider unavailable")

// BreakerConfig configures the breaker around one loader.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the
	// breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before letting a probe
	// through.
	OpenTimeout time.Duration
	// HalfOpenMaxRequests probes must succeed to close it again.
	HalfOpenMaxRequests uint32
}

// DefaultBreakerConfig returns 5 failures / 30s / 1 probe.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{MaxFailures: 5, OpenTimeout: 30 * time.Second, HalfOpenMaxRequests: 1}
}

// NewBreaker builds a named breaker that logs its state changes. Caller
// cancellations do not count as failures.
func NewBreaker(name string, cfg BreakerConfig, logger zerolog.Logger) *gobreaker.CircuitBreaker {
	def := DefaultBreakerConfig()
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = def.MaxFailures
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if cfg.HalfOpenMaxRequests == 0 {
		cfg.HalfOpenMaxRequests = def.HalfOpenMaxRequests
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenMaxRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			ev := logger.Warn()
			if to == gobreaker.StateClosed {
				ev = logger.Info()
			}
			ev.Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("data provider breaker state changed")
		},
	})
}

func execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	out, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %s: %v", ErrUnavailable, cb.Name(), err)
		}
		return zero, err
	}
	return out.(T), nil
}

type guardedEvents[E any] struct {
	next EventLoader[E]
	cb   *gobreaker.CircuitBreaker
}

// GuardEvents wraps next with cb.
func GuardEvents[E any](next EventLoader[E], cb *gobreaker.CircuitBreaker) EventLoader[E] {
	return &guardedEvents[E]{next: next, cb: cb}
}

func (g *guardedEvents[E]) LoadEvents(ctx context.Context, datasets []string) ([]E, error) {
	return execute(g.cb, func() ([]E, error) { return g.next.LoadEvents(ctx, datasets) })
}

type guardedPopulation struct {
	next PopulationLoader
	cb   *gobreaker.CircuitBreaker
}

// GuardPopulation wraps next with cb.
func GuardPopulation(next PopulationLoader, cb *gobreaker.CircuitBreaker) PopulationLoader {
	return &guardedPopulation{next: next, cb: cb}
}

func (g *guardedPopulation) LoadPopulation(ctx context.Context, datasets []string) ([]*population.Subject, error) {
	return execute(g.cb, func() ([]*population.Subject, error) { return g.next.LoadPopulation(ctx, datasets) })
}
