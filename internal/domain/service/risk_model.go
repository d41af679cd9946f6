package service

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/bib/services/deadstock-service/internal/domain/model"
	"github.com/bibbank/bib/services/deadstock-service/internal/ml"
)

// Score bounds applied to every prediction.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// RiskModel fits a min-max scaler followed by a gradient-boosted tree
// ensemble to heuristic labels.
type RiskModel struct {
	params ml.BoostingParams
	now    func() time.Time
}

// NewRiskModel creates a RiskModel with the given boosting hyperparameters.
func NewRiskModel(params ml.BoostingParams) (*RiskModel, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model parameters: %w", err)
	}
	return &RiskModel{params: params, now: time.Now}, nil
}

// Fit trains a new immutable TrainedModel. labels must be index-aligned with
// features. An empty feature set yields model.ErrDataUnavailable.
func (m *RiskModel) Fit(features []model.FeatureVector, labels []float64) (*TrainedModel, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("fitting risk model: %w", model.ErrDataUnavailable)
	}
	if len(features) != len(labels) {
		return nil, fmt.Errorf("fitting risk model: %d feature vectors but %d labels", len(features), len(labels))
	}

	rows := make([][]float64, len(features))
	for i, fv := range features {
		if err := fv.Validate(); err != nil {
			return nil, fmt.Errorf("fitting risk model: %w", err)
		}
		rows[i] = fv.Values()
	}

	scaler, err := ml.FitMinMax(rows)
	if err != nil {
		return nil, fmt.Errorf("fitting scaler: %w", err)
	}
	scaled, err := scaler.TransformAll(rows)
	if err != nil {
		return nil, fmt.Errorf("scaling features: %w", err)
	}

	regressor, err := ml.FitBoostedRegressor(scaled, labels, m.params)
	if err != nil {
		return nil, fmt.Errorf("fitting regressor: %w", err)
	}

	tm := &TrainedModel{
		id:          uuid.New(),
		trainedAt:   m.now().UTC(),
		sampleCount: len(features),
		scaler:      scaler,
		regressor:   regressor,
		scoreMin:    math.Inf(1),
		scoreMax:    math.Inf(-1),
	}
	for _, row := range scaled {
		s, err := tm.predictScaled(row)
		if err != nil {
			return nil, fmt.Errorf("scoring training set: %w", err)
		}
		tm.scoreMin = math.Min(tm.scoreMin, s)
		tm.scoreMax = math.Max(tm.scoreMax, s)
	}
	return tm, nil
}

// TrainedModel is a fitted scaler and regressor pair. It is never mutated
// after Fit returns, so it can be shared freely between goroutines.
type TrainedModel struct {
	id          uuid.UUID
	trainedAt   time.Time
	sampleCount int
	scoreMin    float64
	scoreMax    float64
	scaler      *ml.MinMaxScaler
	regressor   *ml.BoostedRegressor
}

// ID returns the unique model identifier.
func (t *TrainedModel) ID() uuid.UUID { return t.id }

// TrainedAt returns when the model was fitted.
func (t *TrainedModel) TrainedAt() time.Time { return t.trainedAt }

// SampleCount returns the number of products the model was fitted on.
func (t *TrainedModel) SampleCount() int { return t.sampleCount }

// ScoreRange returns the min and max clamped score over the training set.
func (t *TrainedModel) ScoreRange() (float64, float64) { return t.scoreMin, t.scoreMax }

// NumTrees returns the size of the fitted ensemble.
func (t *TrainedModel) NumTrees() int { return t.regressor.NumTrees() }

// Predict scores each vector with the fit-time scaler bounds. Scores are
// clamped to [0, 100]. A nil model yields model.ErrNotReady.
func (t *TrainedModel) Predict(features []model.FeatureVector) ([]model.RiskScore, error) {
	if t == nil {
		return nil, model.ErrNotReady
	}
	out := make([]model.RiskScore, len(features))
	for i, fv := range features {
		s, err := t.PredictOne(fv)
		if err != nil {
			return nil, err
		}
		out[i] = model.RiskScore{ProductID: fv.ProductID, Score: s}
	}
	return out, nil
}

// PredictOne scores a single vector.
func (t *TrainedModel) PredictOne(fv model.FeatureVector) (float64, error) {
	if t == nil {
		return 0, model.ErrNotReady
	}
	if err := fv.Validate(); err != nil {
		return 0, err
	}
	scaled, err := t.scaler.Transform(fv.Values())
	if err != nil {
		return 0, fmt.Errorf("scaling features: %w", err)
	}
	return t.predictScaled(scaled)
}

func (t *TrainedModel) predictScaled(row []float64) (float64, error) {
	raw, err := t.regressor.Predict(row)
	if err != nil {
		return 0, err
	}
	return clip(raw, MinScore, MaxScore), nil
}
