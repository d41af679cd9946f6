package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/bibbank/bib/services/deadstock-service/internal/domain/model"
	"github.com/bibbank/bib/services/deadstock-service/internal/domain/port"
	"github.com/bibbank/bib/services/deadstock-service/internal/infrastructure/metrics"
)

// BreakerConfig tunes the circuit breaker around a product source.
type BreakerConfig struct {
	Name                string
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// BreakerLoader stops calling a failing source until it has had time to
// recover. Rejections wrap model.ErrDataUnavailable so a FallbackLoader
// upstream can substitute another source.
type BreakerLoader struct {
	next port.ProductLoader
	cb   *gobreaker.CircuitBreaker[[]model.ProductAttributes]
	name string
}

// NewBreakerLoader wraps next with a circuit breaker that opens after
// cfg.ConsecutiveFailures failed loads in a row.
func NewBreakerLoader(next port.ProductLoader, cfg BreakerConfig, logger *slog.Logger) *BreakerLoader {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 3
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]model.ProductAttributes](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// Cancellation says nothing about the health of the source.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state transition",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &BreakerLoader{next: next, cb: cb, name: cfg.Name}
}

// Load implements port.ProductLoader.
func (l *BreakerLoader) Load(ctx context.Context) ([]model.ProductAttributes, error) {
	products, err := l.cb.Execute(func() ([]model.ProductAttributes, error) {
		return l.next.Load(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(l.name, "rejected").Inc()
			return nil, fmt.Errorf("%w: %s: %w", model.ErrDataUnavailable, l.name, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(l.name, "failure").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(l.name, "success").Inc()
	return products, nil
}

// State returns the current breaker state.
func (l *BreakerLoader) State() gobreaker.State {
	return l.cb.State()
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
