package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/bib/services/deadstock-service/internal/domain/service"
)

// salesVelocityDays converts monthly sales to a daily velocity.
const salesVelocityDays = 30.0

// ProductRecord is one row of the products listing.
type ProductRecord struct {
	SKU                string  `json:"sku"`
	Name               string  `json:"name"`
	Category           string  `json:"category"`
	Warehouse          string  `json:"warehouse"`
	ProductID          int64   `json:"product_id"`
	StockLevel         int     `json:"stock_level"`
	StockAgeDays       int     `json:"stock_age_days"`
	SalesVelocity      float64 `json:"sales_velocity"`
	RiskScore          float64 `json:"risk_score"`
	DeadStockRiskScore float64 `json:"dead_stock_risk_score"`
	RiskBucket         string  `json:"risk_bucket"`
}

// SummaryResponse holds dashboard KPIs.
type SummaryResponse struct {
	TotalProducts int     `json:"total_products"`
	HighRisk      int     `json:"high_risk"`
	MediumRisk    int     `json:"medium_risk"`
	LowRisk       int     `json:"low_risk"`
	AverageRisk   float64 `json:"average_risk"`
}

// ChartResponse is a labelled series used by the category and trend reports.
type ChartResponse struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// ModelInfoResponse describes the served model.
type ModelInfoResponse struct {
	TrainedAt   time.Time `json:"trained_at"`
	ModelID     uuid.UUID `json:"model_id"`
	SampleCount int       `json:"sample_count"`
	NumTrees    int       `json:"num_trees"`
	ScoreMin    float64   `json:"score_min"`
	ScoreMax    float64   `json:"score_max"`
}

// StatusResponse is returned by the service root.
type StatusResponse struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Endpoints []string `json:"endpoints"`
}

// FromScoredProduct maps a scored product to its listing row.
func FromScoredProduct(sp service.ScoredProduct) ProductRecord {
	p := sp.Product.WithDefaults()

	velocity := 0.0
	if p.MonthlySales > 0 {
		velocity = p.MonthlySales / salesVelocityDays
	}
	score := service.Round(sp.Score, 1)

	return ProductRecord{
		ProductID:          p.ID,
		SKU:                p.SKU,
		Name:               p.Name,
		Category:           p.Category,
		Warehouse:          p.Warehouse,
		StockLevel:         int(p.StockLevel),
		SalesVelocity:      service.Round(velocity, 2),
		StockAgeDays:       int(p.StockAgeDays),
		RiskScore:          score,
		DeadStockRiskScore: score,
		RiskBucket:         sp.Bucket.String(),
	}
}

// ProductRecords maps every scored product, preserving order.
func ProductRecords(r *service.ScoringResult) []ProductRecord {
	out := make([]ProductRecord, len(r.Products))
	for i, sp := range r.Products {
		out[i] = FromScoredProduct(sp)
	}
	return out
}

// FromSummary maps bucket counts; the average is rounded to one decimal.
func FromSummary(s service.Summary) SummaryResponse {
	return SummaryResponse{
		TotalProducts: s.Total,
		HighRisk:      s.High,
		MediumRisk:    s.Medium,
		LowRisk:       s.Low,
		AverageRisk:   service.Round(s.AverageScore, 1),
	}
}

// FromCategoryMeans builds the category report with one-decimal means.
func FromCategoryMeans(means []service.CategoryMean) ChartResponse {
	resp := ChartResponse{
		Labels: make([]string, len(means)),
		Values: make([]float64, len(means)),
	}
	for i, m := range means {
		resp.Labels[i] = m.Category
		resp.Values[i] = service.Round(m.Mean, 1)
	}
	return resp
}

// FromTrend pairs a trend series with its period labels.
func FromTrend(values []float64) ChartResponse {
	return ChartResponse{
		Labels: append([]string(nil), service.TrendLabels...),
		Values: values,
	}
}

// FromTrainedModel maps model metadata.
func FromTrainedModel(m *service.TrainedModel) ModelInfoResponse {
	lo, hi := m.ScoreRange()
	return ModelInfoResponse{
		ModelID:     m.ID(),
		TrainedAt:   m.TrainedAt(),
		SampleCount: m.SampleCount(),
		NumTrees:    m.NumTrees(),
		ScoreMin:    service.Round(lo, 1),
		ScoreMax:    service.Round(hi, 1),
	}
}
