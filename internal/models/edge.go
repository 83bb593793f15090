package models

import "time"

// InfluenceLevel buckets a 0-100 influence score for display and filtering.
type InfluenceLevel string

const (
	InfluenceVeryLow  InfluenceLevel = "very-low"
	InfluenceLow      InfluenceLevel = "low"
	InfluenceModerate InfluenceLevel = "moderate"
	InfluenceHigh     InfluenceLevel = "high"
	InfluenceVeryHigh InfluenceLevel = "very-high"
)

// Influence score bounds.
const (
	MinInfluence = 0.0
	MaxInfluence = 100.0
)

// LevelForInfluence maps a 0-100 influence score to its bucket.
func LevelForInfluence(influence float64) InfluenceLevel {
	switch {
	case influence < 20:
		return InfluenceVeryLow
	case influence < 40:
		return InfluenceLow
	case influence < 60:
		return InfluenceModerate
	case influence < 80:
		return InfluenceHigh
	default:
		return InfluenceVeryHigh
	}
}

// CausalEdge is a directed, scored cause->effect relationship between two
// nodes that both exist in the store at creation time. Edges die with either
// endpoint.
type CausalEdge struct {
	ID          string         `json:"id"`
	FromID      string         `json:"fromId"`
	ToID        string         `json:"toId"`
	Influence   float64        `json:"influence"`   // 0-100
	Level       InfluenceLevel `json:"level"`       // derived from Influence
	TimeLag     time.Duration  `json:"timeLag"`     // effect timestamp minus cause timestamp
	Correlation float64        `json:"correlation"` // supplied by the external correlation component
	Confidence  float64        `json:"confidence"`  // 0-1, derived
	Description string         `json:"description"`
}

// ClampInfluence forces an influence score into the documented 0-100 range.
func ClampInfluence(influence float64) float64 {
	if influence < MinInfluence {
		return MinInfluence
	}
	if influence > MaxInfluence {
		return MaxInfluence
	}
	return influence
}
