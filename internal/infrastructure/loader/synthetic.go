package loader

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/bibbank/bib/services/deadstock-service/internal/domain/model"
)

// DefaultSyntheticCount is the size of the demo dataset.
const DefaultSyntheticCount = 10

// SyntheticLoader produces a small demo catalog with the same shape as real
// data. Equal seeds produce equal catalogs on every call.
type SyntheticLoader struct {
	count int
	seed  uint64
}

// NewSyntheticLoader creates a SyntheticLoader. A non-positive count means
// DefaultSyntheticCount.
func NewSyntheticLoader(count int, seed uint64) *SyntheticLoader {
	if count <= 0 {
		count = DefaultSyntheticCount
	}
	return &SyntheticLoader{count: count, seed: seed}
}

// Load implements port.ProductLoader.
func (l *SyntheticLoader) Load(_ context.Context) ([]model.ProductAttributes, error) {
	r := rand.New(rand.NewPCG(l.seed, l.seed))

	// intn draws from [lo, hi).
	intn := func(lo, hi int) float64 { return float64(lo + r.IntN(hi-lo)) }
	uniform := func(lo, hi float64) float64 { return lo + (hi-lo)*r.Float64() }

	products := make([]model.ProductAttributes, l.count)
	for i := range products {
		n := i + 1
		products[i] = model.ProductAttributes{
			ID:               int64(n),
			SKU:              fmt.Sprintf("SKU-%04d", n),
			Name:             fmt.Sprintf("Demo Product %d", n),
			Category:         model.UnknownLabel,
			Warehouse:        model.UnknownLabel,
			StockLevel:       intn(50, 800),
			StockAgeDays:     intn(5, 260),
			RestockFrequency: intn(7, 90),
			SafetyStock:      intn(10, 200),
			MonthlySales:     intn(0, 400),
			ReturnedUnits:    intn(0, 50),
			AvgDiscountRate:  uniform(0, 0.5),
			PageViews:        intn(0, 5000),
			ClickThroughRate: uniform(0, 0.1),
			AddToCartRate:    uniform(0, 0.08),
			ConversionRate:   uniform(0, 0.05),
			ReviewCount:      intn(0, 2000),
			DiscountPercent:  uniform(0, 0.5),
			AdImpressions:    intn(0, 100000),
			TrendScore:       uniform(0, 1),
			HolidayFlag:      intn(0, 2),
			SeasonalityFlag:  intn(0, 2),
		}
	}
	return products, nil
}
