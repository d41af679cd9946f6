package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bibbank/bib/services/deadstock-service/internal/domain/model"
	"github.com/bibbank/bib/services/deadstock-service/internal/domain/service"
	"github.com/bibbank/bib/services/deadstock-service/internal/ml"
)

// --- Mock implementations ---

type mockLoader struct {
	products []model.ProductAttributes
	err      error
	calls    int
}

func (m *mockLoader) Load(_ context.Context) ([]model.ProductAttributes, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

type mockPublisher struct {
	mu              sync.Mutex
	publishedEvents []interface{}
	publishFunc     func(ctx context.Context, events ...interface{}) error
}

func (m *mockPublisher) Publish(ctx context.Context, evts ...interface{}) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

type mockMetrics struct {
	succeeded int
	failed    int
	samples   int
	scored    int
	high      int
}

func (m *mockMetrics) TrainingSucceeded(_ time.Duration, samples int) {
	m.succeeded++
	m.samples = samples
}

func (m *mockMetrics) TrainingFailed(time.Duration) { m.failed++ }

func (m *mockMetrics) ProductsScored(total, high int) {
	m.scored = total
	m.high = high
}

// --- Fixtures ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func products() []model.ProductAttributes {
	return []model.ProductAttributes{
		{ID: 1, SKU: "SKU-1", Category: "Toys", StockLevel: 20, MonthlySales: 50, StockAgeDays: 5, TrendScore: 0.9, RestockFrequency: 30},
		{ID: 2, SKU: "SKU-2", Category: "Toys", StockLevel: 400, MonthlySales: 20, StockAgeDays: 90, TrendScore: 0.5, RestockFrequency: 30},
		{ID: 3, SKU: "SKU-3", Category: "Garden", StockLevel: 3000, MonthlySales: 2, StockAgeDays: 300, TrendScore: 0.2, RestockFrequency: 30},
		{ID: 4, SKU: "SKU-4", StockLevel: 9000, MonthlySales: 0, StockAgeDays: 500, TrendScore: 0, RestockFrequency: 30},
	}
}

type fixture struct {
	store   *service.ModelStore
	scoring *service.ScoringService
	builder *service.FeatureBuilder
	model   *service.RiskModel
}

func newFixture() fixture {
	p := ml.DefaultBoostingParams()
	p.NEstimators = 30
	p.Subsample = 1
	p.ColSample = 1
	p.LearningRate = 0.3
	rm, err := service.NewRiskModel(p)
	if err != nil {
		panic(err)
	}
	builder := service.NewFeatureBuilder(2)
	return fixture{
		store:   service.NewModelStore(),
		scoring: service.NewScoringService(builder, 42),
		builder: builder,
		model:   rm,
	}
}
