package port

import (
	"context"

	"github.com/bibbank/bib/services/deadstock-service/internal/domain/model"
)

// ProductLoader supplies the per-product attribute table.
type ProductLoader interface {
	// Load returns every product with numeric fields already defaulted.
	// Implementations return an error wrapping model.ErrDataUnavailable when
	// the source cannot be reached or yields no rows.
	Load(ctx context.Context) ([]model.ProductAttributes, error)
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	// Publish sends one or more domain events to the messaging infrastructure.
	Publish(ctx context.Context, events ...interface{}) error
}
