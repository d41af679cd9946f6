package usecase

import "time"

// Metrics records pipeline outcomes.
type Metrics interface {
	TrainingSucceeded(d time.Duration, samples int)
	TrainingFailed(d time.Duration)
	ProductsScored(total, high int)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) TrainingSucceeded(time.Duration, int) {}
func (NopMetrics) TrainingFailed(time.Duration)          {}
func (NopMetrics) ProductsScored(int, int)               {}
