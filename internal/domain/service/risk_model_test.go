package service_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/bib/services/deadstock-service/internal/domain/model"
	"github.com/bibbank/bib/services/deadstock-service/internal/domain/service"
	"github.com/bibbank/bib/services/deadstock-service/internal/ml"
)

func TestNewRiskModel_InvalidParams(t *testing.T) {
	p := ml.DefaultBoostingParams()
	p.NEstimators = 0

	_, err := service.NewRiskModel(p)
	require.Error(t, err)
}

func TestRiskModel_FitEmpty(t *testing.T) {
	rm, err := service.NewRiskModel(testParams())
	require.NoError(t, err)

	_, err = rm.Fit(nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrDataUnavailable))
}

func TestRiskModel_FitMismatchedLabels(t *testing.T) {
	rm, err := service.NewRiskModel(testParams())
	require.NoError(t, err)

	_, err = rm.Fit([]model.FeatureVector{{}, {}}, []float64{1})
	require.Error(t, err)
}

func TestRiskModel_FitRejectsNonFinite(t *testing.T) {
	rm, err := service.NewRiskModel(testParams())
	require.NoError(t, err)

	_, err = rm.Fit([]model.FeatureVector{{ProductID: 4, StockLevel: math.Inf(1)}}, []float64{1})
	require.ErrorIs(t, err, model.ErrInvalidAttribute)
}

func TestRiskModel_ApproximatesHeuristic(t *testing.T) {
	products := catalog(30, 0)
	m := trainOn(t, products)

	features, err := service.NewFeatureBuilder(1).BuildAll(context.Background(), products)
	require.NoError(t, err)
	labels := service.NewHeuristicLabeler().LabelAll(features)

	scores, err := m.Predict(features)
	require.NoError(t, err)
	require.Len(t, scores, len(features))

	var sse, sst, mean float64
	for _, l := range labels {
		mean += l
	}
	mean /= float64(len(labels))
	for i, s := range scores {
		assert.Equal(t, features[i].ProductID, s.ProductID)
		sse += (s.Score - labels[i]) * (s.Score - labels[i])
		sst += (labels[i] - mean) * (labels[i] - mean)
	}
	assert.Less(t, sse, sst*0.1)

	assert.Equal(t, 30, m.SampleCount())
	assert.Equal(t, 40, m.NumTrees())
	assert.NotEqual(t, uuid.Nil, m.ID())
	assert.False(t, m.TrainedAt().IsZero())
	lo, hi := m.ScoreRange()
	assert.LessOrEqual(t, lo, hi)
}

func TestTrainedModel_ClampsOutOfRangeFeatures(t *testing.T) {
	m := trainOn(t, catalog(20, 0))

	far := []model.FeatureVector{
		{ProductID: 1, StockLevel: 1e12, StockPressure: 1e12, StockAgeDays: 1e9},
		{ProductID: 2, StockLevel: -1e12, StockPressure: -1e12, TrendScore: 1e6},
		{ProductID: 3, MonthlySales: 1e15, PromotionIntensity: -1e15},
	}
	scores, err := m.Predict(far)
	require.NoError(t, err)
	for _, s := range scores {
		assert.GreaterOrEqual(t, s.Score, service.MinScore)
		assert.LessOrEqual(t, s.Score, service.MaxScore)
	}
}

func TestTrainedModel_Deterministic(t *testing.T) {
	products := catalog(25, 0)
	a := trainOn(t, products)
	b := trainOn(t, products)

	features, err := service.NewFeatureBuilder(1).BuildAll(context.Background(), products)
	require.NoError(t, err)

	sa, err := a.Predict(features)
	require.NoError(t, err)
	sb, err := b.Predict(features)
	require.NoError(t, err)
	assert.Equal(t, sa, sb)
}

func TestTrainedModel_NilIsNotReady(t *testing.T) {
	var m *service.TrainedModel

	_, err := m.Predict([]model.FeatureVector{{}})
	require.ErrorIs(t, err, model.ErrNotReady)

	_, err = m.PredictOne(model.FeatureVector{})
	require.ErrorIs(t, err, model.ErrNotReady)
}
