package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bibbank/bib/services/deadstock-service/internal/domain/model"
)

// Querier is the subset of pgxpool.Pool used by ProductLoader.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// productAttributesQuery aggregates recent sales, behavior, marketing and
// trend rows per stocked product. Every nullable column is defaulted here so
// the scan never sees NULL.
const productAttributesQuery = `
	WITH sales_agg AS (
		SELECT
			s.product_id,
			SUM(s.quantity_sold)  AS monthly_sales,
			SUM(s.returned_units) AS returned_units,
			AVG(s.discount_rate)  AS avg_discount_rate
		FROM sales s
		WHERE s.date >= CURRENT_DATE - INTERVAL '30 days'
		GROUP BY s.product_id
	),
	behavior_agg AS (
		SELECT
			c.product_id,
			SUM(c.page_views)         AS page_views,
			AVG(c.click_through_rate) AS click_through_rate,
			AVG(c.add_to_cart_rate)   AS add_to_cart_rate,
			AVG(c.conversion_rate)    AS conversion_rate,
			SUM(c.review_count)       AS review_count
		FROM customer_behavior c
		WHERE c.date >= CURRENT_DATE - INTERVAL '30 days'
		GROUP BY c.product_id
	),
	marketing_agg AS (
		SELECT
			m.product_id,
			AVG(m.discount_percent) AS discount_percent,
			SUM(m.ad_impressions)   AS ad_impressions
		FROM marketing_events m
		WHERE m.start_date >= CURRENT_DATE - INTERVAL '60 days'
		GROUP BY m.product_id
	),
	trends_agg AS (
		SELECT
			t.product_id,
			AVG(t.trend_score) AS trend_score,
			MAX(CASE WHEN t.holiday_flag = 1 THEN 1 ELSE 0 END) AS holiday_flag
		FROM external_trends t
		WHERE t.date >= CURRENT_DATE - INTERVAL '90 days'
		GROUP BY t.product_id
	)
	SELECT
		p.id,
		p.sku,
		p.name,
		COALESCE(c.name, 'Unknown'),
		COALESCE(w.name, 'Unknown'),
		COALESCE(inv.stock_level, 0)::float8,
		COALESCE(inv.stock_age_days, 0)::float8,
		COALESCE(inv.restock_frequency, 30)::float8,
		COALESCE(inv.safety_stock, 0)::float8,
		COALESCE(sa.monthly_sales, 0)::float8,
		COALESCE(sa.returned_units, 0)::float8,
		COALESCE(sa.avg_discount_rate, 0)::float8,
		COALESCE(ba.page_views, 0)::float8,
		COALESCE(ba.click_through_rate, 0)::float8,
		COALESCE(ba.add_to_cart_rate, 0)::float8,
		COALESCE(ba.conversion_rate, 0)::float8,
		COALESCE(ba.review_count, 0)::float8,
		COALESCE(ma.discount_percent, 0)::float8,
		COALESCE(ma.ad_impressions, 0)::float8,
		COALESCE(tr.trend_score, 0)::float8,
		COALESCE(tr.holiday_flag, 0)::float8,
		COALESCE(p.seasonality_flag, 0)::float8
	FROM products p
	JOIN inventory inv ON inv.product_id = p.id
	LEFT JOIN categories c ON p.category_id = c.id
	LEFT JOIN warehouses w ON inv.warehouse_id = w.id
	LEFT JOIN sales_agg sa ON sa.product_id = p.id
	LEFT JOIN behavior_agg ba ON ba.product_id = p.id
	LEFT JOIN marketing_agg ma ON ma.product_id = p.id
	LEFT JOIN trends_agg tr ON tr.product_id = p.id
	ORDER BY p.id, inv.id
`

// ProductLoader implements port.ProductLoader over the inventory schema.
type ProductLoader struct {
	db Querier
}

// NewProductLoader creates a new PostgreSQL-backed product loader.
func NewProductLoader(db Querier) *ProductLoader {
	return &ProductLoader{db: db}
}

// Load returns one row per inventory record. Query failures and an empty
// result both wrap model.ErrDataUnavailable.
func (l *ProductLoader) Load(ctx context.Context) ([]model.ProductAttributes, error) {
	rows, err := l.db.Query(ctx, productAttributesQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: query product attributes: %w", model.ErrDataUnavailable, err)
	}
	defer rows.Close()

	var products []model.ProductAttributes
	for rows.Next() {
		var p model.ProductAttributes
		if err := rows.Scan(
			&p.ID,
			&p.SKU,
			&p.Name,
			&p.Category,
			&p.Warehouse,
			&p.StockLevel,
			&p.StockAgeDays,
			&p.RestockFrequency,
			&p.SafetyStock,
			&p.MonthlySales,
			&p.ReturnedUnits,
			&p.AvgDiscountRate,
			&p.PageViews,
			&p.ClickThroughRate,
			&p.AddToCartRate,
			&p.ConversionRate,
			&p.ReviewCount,
			&p.DiscountPercent,
			&p.AdImpressions,
			&p.TrendScore,
			&p.HolidayFlag,
			&p.SeasonalityFlag,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product attributes: %w", err)
		}
		products = append(products, p.WithDefaults())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate product attributes: %w", model.ErrDataUnavailable, err)
	}

	if len(products) == 0 {
		return nil, fmt.Errorf("no stocked products found: %w", model.ErrDataUnavailable)
	}
	return products, nil
}
