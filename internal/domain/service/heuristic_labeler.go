package service

import "github.com/bibbank/bib/services/deadstock-service/internal/domain/model"

// Normalization horizons for the heuristic label.
const (
	ageHorizonDays  = 365.0
	pressureCeiling = 100.0
)

// Label weights; they sum to one.
const (
	pressureWeight = 0.5
	ageWeight      = 0.3
	trendWeight    = 0.2
)

// HeuristicLabeler synthesizes the training target from derived signals.
// Stock pressure dominates, then stock age, then lack of trend interest.
type HeuristicLabeler struct{}

// NewHeuristicLabeler creates a new HeuristicLabeler instance.
func NewHeuristicLabeler() *HeuristicLabeler {
	return &HeuristicLabeler{}
}

// Label returns a risk label in [0, 100]. It is a pure function of the
// vector's stock pressure, stock age and trend score.
func (l *HeuristicLabeler) Label(fv model.FeatureVector) float64 {
	ageScaled := clip(fv.StockAgeDays/ageHorizonDays, 0, 1)
	pressureScaled := clip(fv.StockPressure/pressureCeiling, 0, 1)
	trendInverse := 1 - clip(fv.TrendScore, 0, 1)

	raw := clip(pressureWeight*pressureScaled+ageWeight*ageScaled+trendWeight*trendInverse, 0, 1)
	return raw * 100
}

// LabelAll labels every vector, preserving order.
func (l *HeuristicLabeler) LabelAll(features []model.FeatureVector) []float64 {
	labels := make([]float64, len(features))
	for i, fv := range features {
		labels[i] = l.Label(fv)
	}
	return labels
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
