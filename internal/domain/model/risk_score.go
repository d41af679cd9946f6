package model

// RiskScore is the served dead-stock risk estimate for one product, in [0, 100].
type RiskScore struct {
	ProductID int64
	Score     float64
}
