package loader

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bibbank/bib/services/deadstock-service/internal/domain/model"
	"github.com/bibbank/bib/services/deadstock-service/internal/domain/port"
	"github.com/bibbank/bib/services/deadstock-service/internal/infrastructure/metrics"
)

// FallbackLoader serves the fallback source whenever the primary source
// fails with model.ErrDataUnavailable. Other errors, such as invalid rows or
// cancellation, are returned unchanged.
type FallbackLoader struct {
	primary  port.ProductLoader
	fallback port.ProductLoader
	name     string
	logger   *slog.Logger
}

// NewFallbackLoader creates a FallbackLoader. name labels the fallback in
// logs and metrics.
func NewFallbackLoader(primary, fallback port.ProductLoader, name string, logger *slog.Logger) *FallbackLoader {
	return &FallbackLoader{
		primary:  primary,
		fallback: fallback,
		name:     name,
		logger:   logger,
	}
}

// Load implements port.ProductLoader.
func (l *FallbackLoader) Load(ctx context.Context) ([]model.ProductAttributes, error) {
	products, err := l.primary.Load(ctx)
	if err == nil && len(products) > 0 {
		return products, nil
	}
	if err != nil && !errors.Is(err, model.ErrDataUnavailable) {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	cause := "no rows"
	if err != nil {
		cause = err.Error()
	}
	l.logger.WarnContext(ctx, "primary product source unavailable, using fallback",
		slog.String("fallback", l.name),
		slog.String("cause", cause),
	)
	metrics.LoaderFallbacks.WithLabelValues(l.name).Inc()

	return l.fallback.Load(ctx)
}
