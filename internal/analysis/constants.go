package analysis

import "time"

// Chain score weights (sum to 1.0): mean edge influence, mean edge
// confidence scaled to 0-100, and max node severity scaled to 0-100.
const (
	ChainWeightInfluence  = 0.4
	ChainWeightConfidence = 0.3
	ChainWeightSeverity   = 0.3

	// SeverityScale maps the 0-5 severity range onto 0-100.
	SeverityScale = 20.0
	// ConfidenceScale maps the 0-1 confidence range onto 0-100.
	ConfidenceScale = 100.0
)

// Minimum nodes for a chain to be kept. A single event is a symptom, not a
// chain.
const MinChainNodes = 2

// Cause partitioning thresholds and caps.
const (
	// SecondaryInfluenceThreshold qualifies nodes reached directly from the
	// primary cause.
	SecondaryInfluenceThreshold = 60.0
	// TertiaryInfluenceThreshold qualifies remaining chain nodes touched by
	// a sufficiently strong edge.
	TertiaryInfluenceThreshold = 40.0
	// Hidden causes sit strictly between these mean incoming influences:
	// weak but persistent signals that the tiering above would miss.
	HiddenInfluenceMin = 20.0
	HiddenInfluenceMax = 40.0

	MaxSecondaryCauses = 3
	MaxTertiaryCauses  = 3
	MaxHiddenCauses    = 2
)

// Evidence generation thresholds.
const (
	// CorrelationEvidenceMin is the correlation-strength above which an edge
	// contributes a correlation evidence item.
	CorrelationEvidenceMin = 0.6
	// TimeAlignmentWindow is the consecutive-pair gap under which a
	// time-alignment item is generated, strength = 1 - gap/window.
	TimeAlignmentWindow = 60 * time.Second
	// SeverityEvidenceMin is the mean chain severity above which a single
	// severity-match item is generated.
	SeverityEvidenceMin = 3.0
	// trendDerivativeCount divides matched derivative signs into a 0-1
	// trend-match strength.
	trendDerivativeCount = 3.0
	// timeLagRounding keeps evidence descriptions readable.
	timeLagRounding = 100 * time.Millisecond
)

// Result probability and confidence blends.
const (
	ProbabilityWeightChain    = 0.6
	ProbabilityWeightEvidence = 0.4

	ResultWeightEdgeConfidence = 0.7
	ResultWeightEvidenceCount  = 0.3
	// EvidenceCountNormalizer: five or more evidence items count as a full
	// trail.
	EvidenceCountNormalizer = 5.0

	// lowConfidenceHint is the confidence under which the recommendations
	// advise collecting more events before acting.
	lowConfidenceHint = 0.5
)
