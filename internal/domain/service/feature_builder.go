package service

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/bibbank/bib/services/deadstock-service/internal/domain/model"
)

// FeatureBuilder derives model inputs from primary product attributes.
type FeatureBuilder struct {
	workers int
}

// NewFeatureBuilder creates a FeatureBuilder that uses up to workers
// goroutines in BuildAll. A non-positive value means GOMAXPROCS.
func NewFeatureBuilder(workers int) *FeatureBuilder {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &FeatureBuilder{workers: workers}
}

// Build computes the feature vector for one product. It never fails; every
// division is guarded. Negative stock and sales count as zero for
// stock_pressure, so net-return rows stay finite and non-negative.
func (b *FeatureBuilder) Build(p model.ProductAttributes) model.FeatureVector {
	returnRatio := 0.0
	if p.MonthlySales > 0 {
		returnRatio = p.ReturnedUnits / p.MonthlySales
	}

	return model.FeatureVector{
		ProductID:          p.ID,
		MonthlySales:       p.MonthlySales,
		ReturnRatio:        returnRatio,
		AvgDiscountRate:    p.AvgDiscountRate,
		StockLevel:         p.StockLevel,
		StockAgeDays:       p.StockAgeDays,
		RestockFrequency:   p.RestockFrequency,
		SafetyStock:        p.SafetyStock,
		EngagementScore:    p.PageViews * p.ClickThroughRate * p.ConversionRate,
		StockPressure:      max(p.StockLevel, 0) / (max(p.MonthlySales, 0) + 1),
		PromotionIntensity: p.DiscountPercent * (p.AdImpressions + 1),
		TrendScore:         p.TrendScore,
		HolidayFlag:        p.HolidayFlag,
		SeasonalityFlag:    p.SeasonalityFlag,
	}
}

// BuildAll validates and builds every product in parallel. The result is
// index-aligned with products. The first invalid product aborts the batch.
func (b *FeatureBuilder) BuildAll(ctx context.Context, products []model.ProductAttributes) ([]model.FeatureVector, error) {
	out := make([]model.FeatureVector, len(products))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i := range products {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := products[i]
			if err := p.Validate(); err != nil {
				return err
			}
			fv := b.Build(p)
			if err := fv.Validate(); err != nil {
				return err
			}
			out[i] = fv
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building features: %w", err)
	}
	return out, nil
}
