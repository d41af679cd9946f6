package model

import (
	"math"
	"strings"
)

// UnknownLabel is used for categorical attributes the source does not provide.
const UnknownLabel = "Unknown"

// DefaultRestockFrequency is substituted when the source has no restock frequency.
// Every other numeric attribute defaults to zero.
const DefaultRestockFrequency = 30.0

// ProductAttributes is the flat per-product attribute row produced by a loader.
// It is treated as immutable once loaded.
type ProductAttributes struct {
	SKU              string
	Name             string
	Category         string
	Warehouse        string
	ID               int64
	StockLevel       float64
	StockAgeDays     float64
	RestockFrequency float64
	SafetyStock      float64
	MonthlySales     float64
	ReturnedUnits    float64
	AvgDiscountRate  float64
	PageViews        float64
	ClickThroughRate float64
	AddToCartRate    float64
	ConversionRate   float64
	ReviewCount      float64
	DiscountPercent  float64
	AdImpressions    float64
	TrendScore       float64
	HolidayFlag      float64
	SeasonalityFlag  float64
}

// numericFields lists every numeric attribute by its column name.
func (p ProductAttributes) numericFields() []struct {
	name  string
	value float64
} {
	return []struct {
		name  string
		value float64
	}{
		{"stock_level", p.StockLevel},
		{"stock_age_days", p.StockAgeDays},
		{"restock_frequency", p.RestockFrequency},
		{"safety_stock", p.SafetyStock},
		{"monthly_sales", p.MonthlySales},
		{"returned_units", p.ReturnedUnits},
		{"avg_discount_rate", p.AvgDiscountRate},
		{"page_views", p.PageViews},
		{"click_through_rate", p.ClickThroughRate},
		{"add_to_cart_rate", p.AddToCartRate},
		{"conversion_rate", p.ConversionRate},
		{"review_count", p.ReviewCount},
		{"discount_percent", p.DiscountPercent},
		{"ad_impressions", p.AdImpressions},
		{"trend_score", p.TrendScore},
		{"holiday_flag", p.HolidayFlag},
		{"seasonality_flag", p.SeasonalityFlag},
	}
}

// Validate rejects rows carrying NaN or infinite numeric attributes.
func (p ProductAttributes) Validate() error {
	for _, f := range p.numericFields() {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &InvalidAttributeError{ProductID: p.ID, Field: f.name, Value: f.value}
		}
	}
	return nil
}

// CategoryKey returns the category used for grouping, "Unknown" when blank.
func (p ProductAttributes) CategoryKey() string {
	return labelOrUnknown(p.Category)
}

// WithDefaults returns a copy with blank categorical fields set to "Unknown".
func (p ProductAttributes) WithDefaults() ProductAttributes {
	p.Category = labelOrUnknown(p.Category)
	p.Warehouse = labelOrUnknown(p.Warehouse)
	return p
}

func labelOrUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return UnknownLabel
	}
	return s
}
