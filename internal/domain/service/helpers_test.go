package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bibbank/bib/services/deadstock-service/internal/domain/model"
	"github.com/bibbank/bib/services/deadstock-service/internal/domain/service"
	"github.com/bibbank/bib/services/deadstock-service/internal/ml"
)

func testParams() ml.BoostingParams {
	p := ml.DefaultBoostingParams()
	p.NEstimators = 40
	p.MaxDepth = 4
	p.LearningRate = 0.2
	return p
}

// catalog returns n products spanning low to high stock pressure and age.
func catalog(n int, offset float64) []model.ProductAttributes {
	categories := []string{"Toys", "Garden", ""}
	out := make([]model.ProductAttributes, n)
	for i := range out {
		f := float64(i)
		out[i] = model.ProductAttributes{
			ID:               int64(i + 1),
			SKU:              "SKU",
			Category:         categories[i%len(categories)],
			StockLevel:       offset + f*120,
			StockAgeDays:     f * 15,
			RestockFrequency: model.DefaultRestockFrequency,
			MonthlySales:     float64(n-i) + 1,
			TrendScore:       1 - f/float64(n),
		}
	}
	return out
}

func trainOn(t *testing.T, products []model.ProductAttributes) *service.TrainedModel {
	t.Helper()
	b := service.NewFeatureBuilder(2)
	features, err := b.BuildAll(context.Background(), products)
	require.NoError(t, err)

	rm, err := service.NewRiskModel(testParams())
	require.NoError(t, err)
	m, err := rm.Fit(features, service.NewHeuristicLabeler().LabelAll(features))
	require.NoError(t, err)
	return m
}
