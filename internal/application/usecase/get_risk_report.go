package usecase

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bibbank/bib/services/deadstock-service/internal/application/dto"
	"github.com/bibbank/bib/services/deadstock-service/internal/domain/port"
	"github.com/bibbank/bib/services/deadstock-service/internal/domain/service"
)

// GetRiskReport scores the current product set with the served model and
// shapes the results for the read API.
type GetRiskReport struct {
	loader  port.ProductLoader
	store   *service.ModelStore
	scoring *service.ScoringService
	metrics Metrics
}

// NewGetRiskReport creates a new GetRiskReport use case.
func NewGetRiskReport(
	loader port.ProductLoader,
	store *service.ModelStore,
	scoring *service.ScoringService,
	metrics Metrics,
) *GetRiskReport {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &GetRiskReport{
		loader:  loader,
		store:   store,
		scoring: scoring,
		metrics: metrics,
	}
}

// Score returns the raw scoring pass. It fails with model.ErrNotReady
// before the first training run.
func (uc *GetRiskReport) Score(ctx context.Context) (*service.ScoringResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "deadstock.score")
	defer span.End()

	result, err := uc.score(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("model.id", result.ModelID.String()),
		attribute.Int("products", len(result.Products)),
	)
	return result, nil
}

func (uc *GetRiskReport) score(ctx context.Context) (*service.ScoringResult, error) {
	trained, err := uc.store.Current()
	if err != nil {
		return nil, err
	}
	products, err := uc.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	result, err := uc.scoring.Score(ctx, trained, products)
	if err != nil {
		return nil, fmt.Errorf("failed to score products: %w", err)
	}
	uc.metrics.ProductsScored(len(result.Products), len(result.HighRisk()))
	return result, nil
}

// Products returns one record per product.
func (uc *GetRiskReport) Products(ctx context.Context) ([]dto.ProductRecord, error) {
	result, err := uc.Score(ctx)
	if err != nil {
		return nil, err
	}
	return dto.ProductRecords(result), nil
}

// Summary returns bucket counts and the average score.
func (uc *GetRiskReport) Summary(ctx context.Context) (dto.SummaryResponse, error) {
	result, err := uc.Score(ctx)
	if err != nil {
		return dto.SummaryResponse{}, err
	}
	return dto.FromSummary(result.Summary()), nil
}

// RiskByCategory returns the mean score per category.
func (uc *GetRiskReport) RiskByCategory(ctx context.Context) (dto.ChartResponse, error) {
	result, err := uc.Score(ctx)
	if err != nil {
		return dto.ChartResponse{}, err
	}
	return dto.FromCategoryMeans(result.CategoryMeans()), nil
}

// DeadStockOverTime returns the six-point display trend.
func (uc *GetRiskReport) DeadStockOverTime(ctx context.Context) (dto.ChartResponse, error) {
	result, err := uc.Score(ctx)
	if err != nil {
		return dto.ChartResponse{}, err
	}
	return dto.FromTrend(uc.scoring.Trend(result)), nil
}

// ModelInfo returns metadata about the served model.
func (uc *GetRiskReport) ModelInfo(_ context.Context) (dto.ModelInfoResponse, error) {
	trained, err := uc.store.Current()
	if err != nil {
		return dto.ModelInfoResponse{}, err
	}
	return dto.FromTrainedModel(trained), nil
}
