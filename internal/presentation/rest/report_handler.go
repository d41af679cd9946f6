package rest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bibbank/bib/services/deadstock-service/internal/application/dto"
	"github.com/bibbank/bib/services/deadstock-service/internal/application/usecase"
	"github.com/bibbank/bib/services/deadstock-service/internal/infrastructure/export"
)

const exportFilename = "deadstock_products.xlsx"

// Exporter renders a report into a downloadable document.
type Exporter interface {
	Write(w io.Writer, r export.Report) error
}

// ReportHandler serves the risk reports and model management endpoints.
type ReportHandler struct {
	reports      *usecase.GetRiskReport
	train        *usecase.TrainModel
	exporter     Exporter
	trainTimeout time.Duration
	logger       *slog.Logger
}

// NewReportHandler creates a report HTTP handler. A zero trainTimeout leaves
// explicit retrains bounded only by the request context.
func NewReportHandler(
	reports *usecase.GetRiskReport,
	train *usecase.TrainModel,
	exporter Exporter,
	trainTimeout time.Duration,
	logger *slog.Logger,
) *ReportHandler {
	return &ReportHandler{
		reports:      reports,
		train:        train,
		exporter:     exporter,
		trainTimeout: trainTimeout,
		logger:       logger,
	}
}

func (h *ReportHandler) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, dto.StatusResponse{
		Status:  "ok",
		Message: "DeadStockAI backend running",
		Endpoints: []string{
			"/api/products",
			"/api/summary",
			"/api/reports/risk_by_category",
			"/api/reports/deadstock_over_time",
			"/api/reports/products.xlsx",
			"/api/model",
			"/api/model/train",
		},
	})
}

func (h *ReportHandler) products(w http.ResponseWriter, r *http.Request) {
	resp, err := h.reports.Products(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReportHandler) summary(w http.ResponseWriter, r *http.Request) {
	resp, err := h.reports.Summary(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReportHandler) riskByCategory(w http.ResponseWriter, r *http.Request) {
	resp, err := h.reports.RiskByCategory(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReportHandler) deadStockOverTime(w http.ResponseWriter, r *http.Request) {
	resp, err := h.reports.DeadStockOverTime(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// exportProducts renders the whole workbook before writing any header.
func (h *ReportHandler) exportProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.reports.Score(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.Write(&buf, export.Report{
		Products:   dto.ProductRecords(result),
		Summary:    dto.FromSummary(result.Summary()),
		Categories: dto.FromCategoryMeans(result.CategoryMeans()),
	}); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w) //nolint:errcheck
}

func (h *ReportHandler) modelInfo(w http.ResponseWriter, r *http.Request) {
	resp, err := h.reports.ModelInfo(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReportHandler) retrain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.trainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.trainTimeout)
		defer cancel()
	}

	resp, err := h.train.Execute(ctx)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
