package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bibbank/bib/services/deadstock-service/internal/application/dto"
	"github.com/bibbank/bib/services/deadstock-service/internal/application/usecase"
	"github.com/bibbank/bib/services/deadstock-service/internal/domain/model"
	"github.com/bibbank/bib/services/deadstock-service/internal/domain/service"
	"github.com/bibbank/bib/services/deadstock-service/internal/infrastructure/export"
	"github.com/bibbank/bib/services/deadstock-service/internal/ml"
	"github.com/bibbank/bib/services/deadstock-service/internal/presentation/rest"
)

type mockLoader struct {
	products []model.ProductAttributes
	err      error
}

func (m *mockLoader) Load(_ context.Context) ([]model.ProductAttributes, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, ...interface{}) error { return nil }

type failingExporter struct{}

func (failingExporter) Write(io.Writer, export.Report) error { return errors.New("disk full") }

func catalog() []model.ProductAttributes {
	return []model.ProductAttributes{
		{ID: 1, SKU: "SKU-1", Category: "Toys", Warehouse: "North", StockLevel: 20, MonthlySales: 60, StockAgeDays: 5, TrendScore: 0.9, RestockFrequency: 30},
		{ID: 2, SKU: "SKU-2", Category: "Toys", Warehouse: "North", StockLevel: 400, MonthlySales: 20, StockAgeDays: 90, TrendScore: 0.5, RestockFrequency: 30},
		{ID: 3, SKU: "SKU-3", Category: "Garden", Warehouse: "South", StockLevel: 3000, MonthlySales: 2, StockAgeDays: 300, TrendScore: 0.2, RestockFrequency: 30},
		{ID: 4, SKU: "SKU-4", StockLevel: 9000, MonthlySales: 0, StockAgeDays: 500, TrendScore: 0, RestockFrequency: 30},
	}
}

type testServer struct {
	handler http.Handler
	loader  *mockLoader
	store   *service.ModelStore
}

func newTestServer(t *testing.T, cfg rest.RouterConfig, exporter rest.Exporter) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	params := ml.DefaultBoostingParams()
	params.NEstimators = 20
	params.LearningRate = 0.3
	riskModel, err := service.NewRiskModel(params)
	require.NoError(t, err)

	loader := &mockLoader{products: catalog()}
	store := service.NewModelStore()
	builder := service.NewFeatureBuilder(2)
	scoring := service.NewScoringService(builder, 42)

	train := usecase.NewTrainModel(loader, nopPublisher{}, builder, service.NewHeuristicLabeler(),
		riskModel, store, scoring, nil, logger)
	reports := usecase.NewGetRiskReport(loader, store, scoring, nil)

	if exporter == nil {
		exporter = export.NewExcelExporter()
	}
	handler := rest.NewRouter(cfg,
		rest.NewReportHandler(reports, train, exporter, 0, logger),
		rest.NewHealthHandler(store, logger),
		logger,
	)
	return &testServer{handler: handler, loader: loader, store: store}
}

func (s *testServer) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func (s *testServer) train(t *testing.T) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/model/train")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t, rest.RouterConfig{CORSOrigins: []string{"*"}}, nil)

	rec := s.do(t, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s.train(t)

	rec = s.do(t, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decode[map[string]string](t, rec)["status"])
}

func TestRouter_Root(t *testing.T) {
	s := newTestServer(t, rest.RouterConfig{}, nil)

	rec := s.do(t, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[dto.StatusResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "DeadStockAI backend running", resp.Message)
	assert.Contains(t, resp.Endpoints, "/api/products")
	assert.Contains(t, resp.Endpoints, "/api/reports/deadstock_over_time")
}

func TestRouter_ReportsBeforeTraining(t *testing.T) {
	s := newTestServer(t, rest.RouterConfig{}, nil)

	paths := []string{
		"/api/products",
		"/api/summary",
		"/api/reports/risk_by_category",
		"/api/reports/deadstock_over_time",
		"/api/reports/products.xlsx",
		"/api/model",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, path)
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
		})
	}
}

func TestRouter_Reports(t *testing.T) {
	s := newTestServer(t, rest.RouterConfig{}, nil)
	s.train(t)

	t.Run("products", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/products")
		require.Equal(t, http.StatusOK, rec.Code)

		records := decode[[]dto.ProductRecord](t, rec)
		require.Len(t, records, 4)
		for i, r := range records {
			assert.Equal(t, catalog()[i].SKU, r.SKU)
			assert.GreaterOrEqual(t, r.RiskScore, 0.0)
			assert.LessOrEqual(t, r.RiskScore, 100.0)
			assert.Equal(t, r.RiskScore, r.DeadStockRiskScore)
		}
		assert.Equal(t, "Unknown", records[3].Category)
		assert.Equal(t, 2.0, records[0].SalesVelocity)
	})

	t.Run("summary", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/summary")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[dto.SummaryResponse](t, rec)
		assert.Equal(t, 4, resp.TotalProducts)
		assert.Equal(t, 4, resp.HighRisk+resp.MediumRisk+resp.LowRisk)
	})

	t.Run("risk by category", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/reports/risk_by_category")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[dto.ChartResponse](t, rec)
		assert.Equal(t, []string{"Garden", "Toys", "Unknown"}, resp.Labels)
		assert.Len(t, resp.Values, 3)
		assert.True(t, sort.StringsAreSorted(resp.Labels))
	})

	t.Run("dead stock over time", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/reports/deadstock_over_time")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[dto.ChartResponse](t, rec)
		assert.Equal(t, service.TrendLabels, resp.Labels)
		require.Len(t, resp.Values, 6)

		again := decode[dto.ChartResponse](t, s.do(t, http.MethodGet, "/api/reports/deadstock_over_time"))
		assert.Equal(t, resp.Values, again.Values)
	})

	t.Run("model info", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/model")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[dto.ModelInfoResponse](t, rec)
		assert.Equal(t, 4, resp.SampleCount)
		assert.Equal(t, 20, resp.NumTrees)
	})

	t.Run("xlsx export", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/reports/products.xlsx")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows(export.ProductsSheet)
		require.NoError(t, err)
		assert.Len(t, rows, 5)
	})
}

func TestRouter_EmptyCatalogAfterTraining(t *testing.T) {
	s := newTestServer(t, rest.RouterConfig{}, nil)
	s.train(t)
	s.loader.products = nil

	rec := s.do(t, http.MethodGet, "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.SummaryResponse{}, decode[dto.SummaryResponse](t, rec))

	rec = s.do(t, http.MethodGet, "/api/reports/deadstock_over_time")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 0}, decode[dto.ChartResponse](t, rec).Values)
}

func TestRouter_TrainErrors(t *testing.T) {
	tests := []struct {
		name     string
		products []model.ProductAttributes
		err      error
		status   int
	}{
		{
			name:   "source unavailable",
			err:    model.ErrDataUnavailable,
			status: http.StatusServiceUnavailable,
		},
		{
			name:   "empty catalog",
			status: http.StatusServiceUnavailable,
		},
		{
			name:     "invalid attribute",
			products: []model.ProductAttributes{{ID: 9, StockLevel: math.NaN()}},
			status:   http.StatusUnprocessableEntity,
		},
		{
			name:   "unexpected failure",
			err:    errors.New("connection reset"),
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, rest.RouterConfig{}, nil)
			s.loader.products = tt.products
			s.loader.err = tt.err

			rec := s.do(t, http.MethodPost, "/api/model/train")
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
			assert.False(t, s.store.Ready())
		})
	}
}

func TestRouter_ExportFailure(t *testing.T) {
	s := newTestServer(t, rest.RouterConfig{}, failingExporter{})
	s.train(t)

	rec := s.do(t, http.MethodGet, "/api/reports/products.xlsx")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "disk full", decode[map[string]string](t, rec)["error"])
}

func TestRouter_RateLimit(t *testing.T) {
	s := newTestServer(t, rest.RouterConfig{RateLimit: 1}, nil)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/").Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do(t, http.MethodGet, "/").Code)

	// Probes are not rate limited.
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/healthz").Code)
}

func TestRouter_CORS(t *testing.T) {
	s := newTestServer(t, rest.RouterConfig{CORSOrigins: []string{"https://dash.example.com"}}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/summary", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, "https://dash.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Metrics(t *testing.T) {
	s := newTestServer(t, rest.RouterConfig{}, nil)

	rec := s.do(t, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}
