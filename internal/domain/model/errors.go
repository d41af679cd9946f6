package model

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable is returned when no product attributes could be supplied.
	ErrDataUnavailable = errors.New("product data unavailable")

	// ErrNotReady is returned when scoring is requested before a model was trained.
	ErrNotReady = errors.New("risk model not ready")

	// ErrInvalidAttribute is returned when a numeric attribute is not finite.
	ErrInvalidAttribute = errors.New("invalid product attribute")
)

// InvalidAttributeError identifies the product and field that failed validation.
type InvalidAttributeError struct {
	ProductID int64
	Field     string
	Value     float64
}

func (e *InvalidAttributeError) Error() string {
	return fmt.Sprintf("product %d: field %s has non-finite value %v", e.ProductID, e.Field, e.Value)
}

// Unwrap lets errors.Is match ErrInvalidAttribute.
func (e *InvalidAttributeError) Unwrap() error {
	return ErrInvalidAttribute
}
