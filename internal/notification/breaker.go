// internal/notification/breaker.go
// Circuit breaker around each external channel so a dead provider stops
// eating the delivery timeout on every event.

package notification

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/imadgeboyega/covenant-backend/internal/common/logger"
)

// BreakerConfig mirrors gobreaker settings
type BreakerConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

// DefaultBreakerConfig returns conservative defaults
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		FailureRatio: 0.6,
		MinRequests:  5,
	}
}

type breakerDispatcher struct {
	next Dispatcher
	cb   *gobreaker.CircuitBreaker[struct{}]
}

// WithBreaker wraps d in a circuit breaker. Missing-contact results count as
// successes so users without a phone number cannot trip the SMS breaker.
func WithBreaker(d Dispatcher, cfg BreakerConfig) Dispatcher {
	name := d.Name()
	settings := gobreaker.Settings{
		Name:        "notify-" + name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNoContact)
		},
		OnStateChange: func(breaker string, from, to gobreaker.State) {
			breakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn().
				Str("breaker", breaker).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("notification circuit breaker state changed")
		},
	}
	breakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))

	return &breakerDispatcher{
		next: d,
		cb:   gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (b *breakerDispatcher) Name() string { return b.next.Name() }

func (b *breakerDispatcher) Dispatch(ctx context.Context, ev Event) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Dispatch(ctx, ev)
	})
	return err
}

// State exposes the breaker state for tests and health output
func (b *breakerDispatcher) State() gobreaker.State {
	return b.cb.State()
}
