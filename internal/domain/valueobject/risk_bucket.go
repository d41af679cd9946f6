package valueobject

import "fmt"

// Bucket thresholds applied to risk scores.
const (
	HighRiskThreshold   = 70.0
	MediumRiskThreshold = 40.0
)

// RiskBucket is an immutable value object for the high/medium/low risk tier.
type RiskBucket struct {
	value string
}

var (
	RiskBucketLow    = RiskBucket{value: "LOW"}
	RiskBucketMedium = RiskBucket{value: "MEDIUM"}
	RiskBucketHigh   = RiskBucket{value: "HIGH"}
)

// RiskBucketFromString reconstructs a RiskBucket from its string representation.
func RiskBucketFromString(s string) (RiskBucket, error) {
	switch s {
	case "LOW":
		return RiskBucketLow, nil
	case "MEDIUM":
		return RiskBucketMedium, nil
	case "HIGH":
		return RiskBucketHigh, nil
	default:
		return RiskBucket{}, fmt.Errorf("invalid risk bucket: %s", s)
	}
}

// RiskBucketFromScore classifies a score: high >= 70, medium in [40, 70), low otherwise.
func RiskBucketFromScore(score float64) RiskBucket {
	switch {
	case score >= HighRiskThreshold:
		return RiskBucketHigh
	case score >= MediumRiskThreshold:
		return RiskBucketMedium
	default:
		return RiskBucketLow
	}
}

// String returns the string representation.
func (b RiskBucket) String() string {
	return b.value
}

// IsZero returns true if the RiskBucket has not been set.
func (b RiskBucket) IsZero() bool {
	return b.value == ""
}

// Equal checks equality with another RiskBucket.
func (b RiskBucket) Equal(other RiskBucket) bool {
	return b.value == other.value
}
