package event

import (
	"time"

	"github.com/google/uuid"
)

const (
	// EventTypeModelTrained is emitted after a new risk model is published.
	EventTypeModelTrained = "deadstock.model.trained"

	// EventTypeHighRiskDetected is emitted for each product the new model
	// places in the HIGH bucket.
	EventTypeHighRiskDetected = "deadstock.high_risk.detected"
)

// ModelTrained is published when a training run replaces the served model.
type ModelTrained struct {
	EventID     uuid.UUID `json:"event_id"`
	ModelID     uuid.UUID `json:"model_id"`
	SampleCount int       `json:"sample_count"`
	ScoreMin    float64   `json:"score_min"`
	ScoreMax    float64   `json:"score_max"`
	HighRisk    int       `json:"high_risk"`
	TrainedAt   time.Time `json:"trained_at"`
}

// EventType returns the event type identifier.
func (e ModelTrained) EventType() string {
	return EventTypeModelTrained
}

// AggregateID returns the model ID as the aggregate identifier.
func (e ModelTrained) AggregateID() uuid.UUID {
	return e.ModelID
}

// HighRiskDetected is published when a product scores at or above the high
// risk threshold.
type HighRiskDetected struct {
	EventID    uuid.UUID `json:"event_id"`
	ModelID    uuid.UUID `json:"model_id"`
	ProductID  int64     `json:"product_id"`
	SKU        string    `json:"sku"`
	Category   string    `json:"category"`
	Warehouse  string    `json:"warehouse"`
	RiskScore  float64   `json:"risk_score"`
	DetectedAt time.Time `json:"detected_at"`
}

// EventType returns the event type identifier.
func (e HighRiskDetected) EventType() string {
	return EventTypeHighRiskDetected
}

// AggregateID returns the model ID as the aggregate identifier.
func (e HighRiskDetected) AggregateID() uuid.UUID {
	return e.ModelID
}
