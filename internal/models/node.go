// Package models defines the shared data model of the causal diagnosis
// engine: observed event nodes, scored influence edges, extracted chains,
// root cause results, and cascade reconstructions.
package models

import "time"

// EventType classifies an observed subsystem event.
type EventType string

const (
	EventSpike           EventType = "spike"
	EventDrift           EventType = "drift"
	EventDegradation     EventType = "degradation"
	EventFailure         EventType = "failure"
	EventRecovery        EventType = "recovery"
	EventAnomaly         EventType = "anomaly"
	EventThresholdBreach EventType = "threshold-breach"
)

// Severity bounds. Event sources supply severity on a 0-5 scale; the engine
// clamps out-of-range input rather than rejecting it.
const (
	MinSeverity = 0.0
	MaxSeverity = 5.0
)

// NodeMetrics carries the observed value and its first three differences
// relative to the subsystem's prior observations. Delta is rate of change,
// Delta2 acceleration, Delta3 jerk. Each defaults to 0 when the subsystem
// has insufficient history.
type NodeMetrics struct {
	Value  float64 `json:"value"`
	Delta  float64 `json:"delta"`
	Delta2 float64 `json:"delta2"`
	Delta3 float64 `json:"delta3"`
}

// CausalNode is one observed event materialized in the graph. Immutable once
// created; owned by the graph store and removed only by retention.
type CausalNode struct {
	ID          string      `json:"id"`
	Subsystem   string      `json:"subsystem"`
	EventType   EventType   `json:"eventType"`
	Timestamp   time.Time   `json:"timestamp"`
	Severity    float64     `json:"severity"`
	Description string      `json:"description"`
	Metrics     NodeMetrics `json:"metrics"`
}

// ClampSeverity forces a severity value into the documented 0-5 range.
func ClampSeverity(severity float64) float64 {
	if severity < MinSeverity {
		return MinSeverity
	}
	if severity > MaxSeverity {
		return MaxSeverity
	}
	return severity
}
