package service

import (
	"context"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/bib/services/deadstock-service/internal/domain/model"
	"github.com/bibbank/bib/services/deadstock-service/internal/domain/valueobject"
)

// TrendLabels are the x-axis labels of the trend series, oldest first.
var TrendLabels = []string{"-5m", "-4m", "-3m", "-2m", "-1m", "Now"}

const (
	trendOffset  = 8.0
	trendStepMin = 1.5
	trendStepMax = 3.0
)

// ScoredProduct pairs a product with its served score and bucket.
type ScoredProduct struct {
	Product model.ProductAttributes
	Score   float64
	Bucket  valueobject.RiskBucket
}

// Summary holds bucket counts and the mean score of a scoring pass.
// High + Medium + Low always equals Total.
type Summary struct {
	Total        int
	High         int
	Medium       int
	Low          int
	AverageScore float64
}

// CategoryMean is the mean score of one category.
type CategoryMean struct {
	Category string
	Mean     float64
}

// ScoringResult is the output of one scoring pass.
type ScoringResult struct {
	ModelID  uuid.UUID
	Products []ScoredProduct
}

// ScoringService scores the current product set against a trained model.
// It never mutates the model.
type ScoringService struct {
	builder   *FeatureBuilder
	trendSeed uint64
}

// NewScoringService creates a ScoringService. trendSeed drives the bounded
// random component of Trend.
func NewScoringService(builder *FeatureBuilder, trendSeed uint64) *ScoringService {
	return &ScoringService{builder: builder, trendSeed: trendSeed}
}

// Score builds features for products and predicts with m. A nil model
// yields model.ErrNotReady; an empty product set yields an empty result.
func (s *ScoringService) Score(ctx context.Context, m *TrainedModel, products []model.ProductAttributes) (*ScoringResult, error) {
	if m == nil {
		return nil, model.ErrNotReady
	}

	features, err := s.builder.BuildAll(ctx, products)
	if err != nil {
		return nil, err
	}
	scores, err := m.Predict(features)
	if err != nil {
		return nil, err
	}

	result := &ScoringResult{
		ModelID:  m.ID(),
		Products: make([]ScoredProduct, len(products)),
	}
	for i, p := range products {
		result.Products[i] = ScoredProduct{
			Product: p,
			Score:   scores[i].Score,
			Bucket:  valueobject.RiskBucketFromScore(scores[i].Score),
		}
	}
	return result, nil
}

// Scores returns the per-product risk scores in input order.
func (r *ScoringResult) Scores() []model.RiskScore {
	out := make([]model.RiskScore, len(r.Products))
	for i, sp := range r.Products {
		out[i] = model.RiskScore{ProductID: sp.Product.ID, Score: sp.Score}
	}
	return out
}

// Summary counts buckets and averages scores. An empty result is all zero.
func (r *ScoringResult) Summary() Summary {
	var sum Summary
	var total float64
	for _, sp := range r.Products {
		switch sp.Bucket {
		case valueobject.RiskBucketHigh:
			sum.High++
		case valueobject.RiskBucketMedium:
			sum.Medium++
		default:
			sum.Low++
		}
		total += sp.Score
	}
	sum.Total = len(r.Products)
	if sum.Total > 0 {
		sum.AverageScore = total / float64(sum.Total)
	}
	return sum
}

// HighRisk returns the products in the HIGH bucket.
func (r *ScoringResult) HighRisk() []ScoredProduct {
	var out []ScoredProduct
	for _, sp := range r.Products {
		if sp.Bucket.Equal(valueobject.RiskBucketHigh) {
			out = append(out, sp)
		}
	}
	return out
}

// CategoryMeans returns the mean score per category sorted by category name.
// Blank categories are grouped under model.UnknownLabel.
func (r *ScoringResult) CategoryMeans() []CategoryMean {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, sp := range r.Products {
		key := sp.Product.CategoryKey()
		sums[key] += sp.Score
		counts[key]++
	}

	out := make([]CategoryMean, 0, len(sums))
	for key, total := range sums {
		out = append(out, CategoryMean{Category: key, Mean: total / float64(counts[key])})
	}
	slices.SortFunc(out, func(a, b CategoryMean) int {
		return strings.Compare(a.Category, b.Category)
	})
	return out
}

// Trend returns a six-point display series aligned with TrendLabels. The
// last point is the current high-risk percentage; earlier points start eight
// points above it and step down by a random amount in [1.5, 3.0), floored at
// zero. Values are rounded to one decimal. The series is for display only.
func (s *ScoringService) Trend(r *ScoringResult) []float64 {
	values := make([]float64, len(TrendLabels))
	sum := r.Summary()
	if sum.Total == 0 {
		return values
	}

	current := Round(100*float64(sum.High)/float64(sum.Total), 1)
	rng := rand.New(rand.NewPCG(s.trendSeed, s.trendSeed))

	base := current + trendOffset
	last := len(values) - 1
	for i := 0; i < last; i++ {
		values[i] = Round(max(0, base), 1)
		base -= trendStepMin + (trendStepMax-trendStepMin)*rng.Float64()
	}
	values[last] = current
	return values
}

// Round rounds the exact binary value of v to places decimals, ties to
// even, so 2.45 (stored as 2.4500000000000001776...) rounds up to 2.5.
func Round(v float64, places int32) float64 {
	d, err := decimal.NewFromString(strconv.FormatFloat(v, 'f', int(places), 64))
	if err != nil {
		return v
	}
	f, _ := d.Float64()
	return f
}
