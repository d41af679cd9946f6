package grpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/bib/services/deadstock-service/internal/application/usecase"
	"github.com/bibbank/bib/services/deadstock-service/internal/domain/model"
)

// DeadStockHandler implements DeadStockServiceServer on top of the use cases.
type DeadStockHandler struct {
	UnimplementedDeadStockServiceServer
	reports      *usecase.GetRiskReport
	train        *usecase.TrainModel
	trainTimeout time.Duration
	logger       *slog.Logger
}

// NewDeadStockHandler creates a new gRPC handler.
func NewDeadStockHandler(
	reports *usecase.GetRiskReport,
	train *usecase.TrainModel,
	trainTimeout time.Duration,
	logger *slog.Logger,
) *DeadStockHandler {
	return &DeadStockHandler{
		reports:      reports,
		train:        train,
		trainTimeout: trainTimeout,
		logger:       logger,
	}
}

// ListProducts returns the scored product listing.
func (h *DeadStockHandler) ListProducts(ctx context.Context, _ *ListProductsRequest) (*ListProductsResponse, error) {
	products, err := h.reports.Products(ctx)
	if err != nil {
		return nil, h.toStatus(ctx, "ListProducts", err)
	}
	return &ListProductsResponse{Products: products}, nil
}

// GetSummary returns bucket counts and the average score.
func (h *DeadStockHandler) GetSummary(ctx context.Context, _ *GetSummaryRequest) (*GetSummaryResponse, error) {
	summary, err := h.reports.Summary(ctx)
	if err != nil {
		return nil, h.toStatus(ctx, "GetSummary", err)
	}
	return &GetSummaryResponse{Summary: summary}, nil
}

// GetRiskByCategory returns the mean score per category.
func (h *DeadStockHandler) GetRiskByCategory(ctx context.Context, _ *GetRiskByCategoryRequest) (*ChartResponse, error) {
	chart, err := h.reports.RiskByCategory(ctx)
	if err != nil {
		return nil, h.toStatus(ctx, "GetRiskByCategory", err)
	}
	return &ChartResponse{Labels: chart.Labels, Values: chart.Values}, nil
}

// GetDeadStockOverTime returns the display trend.
func (h *DeadStockHandler) GetDeadStockOverTime(ctx context.Context, _ *GetDeadStockOverTimeRequest) (*ChartResponse, error) {
	chart, err := h.reports.DeadStockOverTime(ctx)
	if err != nil {
		return nil, h.toStatus(ctx, "GetDeadStockOverTime", err)
	}
	return &ChartResponse{Labels: chart.Labels, Values: chart.Values}, nil
}

// GetModel returns metadata about the served model.
func (h *DeadStockHandler) GetModel(ctx context.Context, _ *GetModelRequest) (*ModelResponse, error) {
	info, err := h.reports.ModelInfo(ctx)
	if err != nil {
		return nil, h.toStatus(ctx, "GetModel", err)
	}
	return &ModelResponse{Model: info}, nil
}

// TrainModel runs a training pass and returns the new model's metadata.
func (h *DeadStockHandler) TrainModel(ctx context.Context, _ *TrainModelRequest) (*ModelResponse, error) {
	if h.trainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.trainTimeout)
		defer cancel()
	}

	info, err := h.train.Execute(ctx)
	if err != nil {
		return nil, h.toStatus(ctx, "TrainModel", err)
	}
	return &ModelResponse{Model: info}, nil
}

// toStatus maps domain errors to gRPC status codes.
func (h *DeadStockHandler) toStatus(ctx context.Context, method string, err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, model.ErrDataUnavailable):
		code = codes.Unavailable
	case errors.Is(err, model.ErrNotReady):
		code = codes.FailedPrecondition
	case errors.Is(err, model.ErrInvalidAttribute):
		code = codes.InvalidArgument
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	default:
		code = codes.Internal
	}
	if code == codes.Internal {
		h.logger.ErrorContext(ctx, "rpc failed", "method", method, "error", err)
	}
	return status.Error(code, err.Error())
}
