package model

import "math"

// FeatureNames is the column order of FeatureVector.Values.
var FeatureNames = []string{
	"monthly_sales",
	"return_ratio",
	"avg_discount_rate",
	"stock_level",
	"stock_age_days",
	"restock_frequency",
	"safety_stock",
	"engagement_score",
	"stock_pressure",
	"promotion_intensity",
	"trend_score",
	"holiday_flag",
	"seasonality_flag",
}

// FeatureVector holds the model inputs derived from one ProductAttributes row.
type FeatureVector struct {
	ProductID          int64
	MonthlySales       float64
	ReturnRatio        float64
	AvgDiscountRate    float64
	StockLevel         float64
	StockAgeDays       float64
	RestockFrequency   float64
	SafetyStock        float64
	EngagementScore    float64
	StockPressure      float64
	PromotionIntensity float64
	TrendScore         float64
	HolidayFlag        float64
	SeasonalityFlag    float64
}

// Values returns the features in FeatureNames order.
func (f FeatureVector) Values() []float64 {
	return []float64{
		f.MonthlySales,
		f.ReturnRatio,
		f.AvgDiscountRate,
		f.StockLevel,
		f.StockAgeDays,
		f.RestockFrequency,
		f.SafetyStock,
		f.EngagementScore,
		f.StockPressure,
		f.PromotionIntensity,
		f.TrendScore,
		f.HolidayFlag,
		f.SeasonalityFlag,
	}
}

// Validate rejects vectors with non-finite entries, which can appear when
// derived products of large inputs overflow.
func (f FeatureVector) Validate() error {
	for i, v := range f.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &InvalidAttributeError{ProductID: f.ProductID, Field: FeatureNames[i], Value: v}
		}
	}
	return nil
}
