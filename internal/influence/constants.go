package influence

// Influence scoring point budget. The four components sum to at most 100:
// severity alignment (30) + trend alignment (30) + time-lag bonus (20) +
// subsystem affinity (20). These are tuning defaults, not derived laws.
const (
	// SeverityBasePoints is the maximum contribution of severity alignment.
	SeverityBasePoints = 30.0
	// SeverityPenaltyPerUnit is subtracted per unit of severity distance.
	SeverityPenaltyPerUnit = 5.0

	// TrendPointsPerMatch is awarded per matching derivative sign among
	// (delta, delta2, delta3); three matches reach the full 30 points.
	TrendPointsPerMatch = 10.0

	// LagBasePoints is the maximum time-lag bonus for a near-instant pair.
	LagBasePoints = 20.0
	// LagDecayPerMinute is subtracted per minute of lag; the bonus reaches
	// zero at ten minutes.
	LagDecayPerMinute = 2.0
)

// Edge confidence blend weights (sum to 1.0).
const (
	ConfidenceWeightInfluence   = 0.4
	ConfidenceWeightCorrelation = 0.4
	ConfidenceWeightRecency     = 0.2
)

// AutoCorrelationPlaceholder is the correlation-strength recorded on
// auto-created edges until the external correlation component supplies the
// real figure.
const AutoCorrelationPlaceholder = 0.7
