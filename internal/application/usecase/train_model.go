package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bibbank/bib/services/deadstock-service/internal/application/dto"
	"github.com/bibbank/bib/services/deadstock-service/internal/domain/event"
	"github.com/bibbank/bib/services/deadstock-service/internal/domain/model"
	"github.com/bibbank/bib/services/deadstock-service/internal/domain/port"
	"github.com/bibbank/bib/services/deadstock-service/internal/domain/service"
)

const tracerName = "github.com/bibbank/bib/services/deadstock-service/internal/application/usecase"

// TrainModel is the use case that loads products, labels them, fits a new
// risk model and publishes it to the model store.
type TrainModel struct {
	loader    port.ProductLoader
	publisher port.EventPublisher
	builder   *service.FeatureBuilder
	labeler   *service.HeuristicLabeler
	riskModel *service.RiskModel
	store     *service.ModelStore
	scoring   *service.ScoringService
	metrics   Metrics
	logger    *slog.Logger
}

// NewTrainModel creates a new TrainModel use case.
func NewTrainModel(
	loader port.ProductLoader,
	publisher port.EventPublisher,
	builder *service.FeatureBuilder,
	labeler *service.HeuristicLabeler,
	riskModel *service.RiskModel,
	store *service.ModelStore,
	scoring *service.ScoringService,
	metrics Metrics,
	logger *slog.Logger,
) *TrainModel {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &TrainModel{
		loader:    loader,
		publisher: publisher,
		builder:   builder,
		labeler:   labeler,
		riskModel: riskModel,
		store:     store,
		scoring:   scoring,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute runs one training pass. Concurrent calls are serialized by the
// model store; a failed pass leaves the previous model in place.
func (uc *TrainModel) Execute(ctx context.Context) (dto.ModelInfoResponse, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "deadstock.train")
	defer span.End()

	start := time.Now()
	var products []model.ProductAttributes

	trained, err := uc.store.Retrain(func() (*service.TrainedModel, error) {
		var err error
		products, err = uc.loader.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load products: %w", err)
		}
		if len(products) == 0 {
			return nil, fmt.Errorf("loader returned no products: %w", model.ErrDataUnavailable)
		}

		features, err := uc.builder.BuildAll(ctx, products)
		if err != nil {
			return nil, err
		}
		labels := uc.labeler.LabelAll(features)

		return uc.riskModel.Fit(features, labels)
	})
	elapsed := time.Since(start)
	if err != nil {
		uc.metrics.TrainingFailed(elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dto.ModelInfoResponse{}, err
	}
	uc.metrics.TrainingSucceeded(elapsed, trained.SampleCount())

	lo, hi := trained.ScoreRange()
	span.SetAttributes(
		attribute.String("model.id", trained.ID().String()),
		attribute.Int("model.samples", trained.SampleCount()),
	)
	uc.logger.Info("risk model trained",
		"model_id", trained.ID().String(),
		"products", trained.SampleCount(),
		"score_min", lo,
		"score_max", hi,
		"duration", elapsed,
	)

	uc.publishEvents(ctx, trained, products)

	return dto.FromTrainedModel(trained), nil
}

// publishEvents announces the new model and its high-risk products. Delivery
// failures are logged; the model is already being served.
func (uc *TrainModel) publishEvents(ctx context.Context, trained *service.TrainedModel, products []model.ProductAttributes) {
	result, err := uc.scoring.Score(ctx, trained, products)
	if err != nil {
		uc.logger.Warn("scoring training set failed", "error", err)
		return
	}
	high := result.HighRisk()
	uc.metrics.ProductsScored(len(result.Products), len(high))

	lo, hi := trained.ScoreRange()
	now := time.Now().UTC()
	events := make([]interface{}, 0, len(high)+1)
	events = append(events, event.ModelTrained{
		EventID:     uuid.New(),
		ModelID:     trained.ID(),
		SampleCount: trained.SampleCount(),
		ScoreMin:    lo,
		ScoreMax:    hi,
		HighRisk:    len(high),
		TrainedAt:   trained.TrainedAt(),
	})
	for _, sp := range high {
		p := sp.Product.WithDefaults()
		events = append(events, event.HighRiskDetected{
			EventID:    uuid.New(),
			ModelID:    trained.ID(),
			ProductID:  p.ID,
			SKU:        p.SKU,
			Category:   p.Category,
			Warehouse:  p.Warehouse,
			RiskScore:  sp.Score,
			DetectedAt: now,
		})
	}

	if err := uc.publisher.Publish(ctx, events...); err != nil {
		uc.logger.Warn("failed to publish training events", "error", err, "events", len(events))
	}
}
