package models

import "time"

// EvidenceType classifies a justification entry in the evidence trail.
type EvidenceType string

const (
	EvidenceCorrelation   EvidenceType = "correlation"
	EvidenceTimeAlignment EvidenceType = "time-alignment"
	EvidenceSeverityMatch EvidenceType = "severity-match"
	EvidenceTrendMatch    EvidenceType = "trend-match"
)

// EvidenceItem is one justification entry supporting a root cause result.
// Ephemeral: regenerated on every analysis pass.
type EvidenceItem struct {
	Type        EvidenceType `json:"type"`
	Description string       `json:"description"`
	Strength    float64      `json:"strength"` // 0-1
	Timestamp   time.Time    `json:"timestamp"`
	SourceID    string       `json:"sourceId"` // edge or node the evidence refers to
}

// RootCauseResult is the output of one analysis pass. Recomputed fresh on
// each call; the most recent result is cached for external query.
type RootCauseResult struct {
	ID              string         `json:"id"`
	PrimaryCause    *CausalNode    `json:"primaryCause,omitempty"`
	SecondaryCauses []CausalNode   `json:"secondaryCauses"`
	TertiaryCauses  []CausalNode   `json:"tertiaryCauses"`
	HiddenCauses    []CausalNode   `json:"hiddenCauses"`
	Chain           *CausalChain   `json:"chain,omitempty"`
	Probability     float64        `json:"probability"` // 0-1
	Confidence      float64        `json:"confidence"`  // 0-1
	Evidence        []EvidenceItem `json:"evidence"`
	Explanation     string         `json:"explanation"`
	Recommendations []string       `json:"recommendations"`
	AnalyzedAt      time.Time      `json:"analyzedAt"`
}

// GraphSummary is a read-only snapshot of graph size and chain quality.
type GraphSummary struct {
	NodeCount           int     `json:"nodeCount"`
	EdgeCount           int     `json:"edgeCount"`
	ChainCount          int     `json:"chainCount"`
	StrongestChainScore float64 `json:"strongestChainScore"`
}

// SpikeAlert is the payload of a major-cause-spike notification: a node
// whose first or second difference jumped past the spike thresholds.
type SpikeAlert struct {
	NodeID    string    `json:"nodeId"`
	Subsystem string    `json:"subsystem"`
	Delta     float64   `json:"delta"`
	Delta2    float64   `json:"delta2"`
	Timestamp time.Time `json:"timestamp"`
}

// UnclearCause is the payload of an unclear-cause notification, emitted when
// analysis finds events but no qualifying chain.
type UnclearCause struct {
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
