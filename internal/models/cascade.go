package models

import "time"

// PhaseName identifies one temporal segment of a cascade.
type PhaseName string

const (
	PhaseInitiation  PhaseName = "initiation"
	PhasePropagation PhaseName = "propagation"
	PhasePeak        PhaseName = "peak"
	PhaseDecline     PhaseName = "decline"
)

// Resolution classifies how a cascade episode ended.
type Resolution string

const (
	ResolutionAutoResolved       Resolution = "auto-resolved"
	ResolutionDampened           Resolution = "dampened"
	ResolutionManualIntervention Resolution = "manual-intervention"
	ResolutionOngoing            Resolution = "ongoing"
)

// CascadePhase is one named temporal segment of a reconstructed cascade.
type CascadePhase struct {
	Name        PhaseName     `json:"name"`
	StartTime   time.Time     `json:"startTime"`
	EndTime     time.Time     `json:"endTime"`
	Duration    time.Duration `json:"duration"`
	Severity    float64       `json:"severity"` // mean severity over the span
	NodeIDs     []string      `json:"nodeIds"`
	Description string        `json:"description"`
}

// CascadeReconstruction is the temporal arc of a winning chain, segmented
// into phases. Appended to a bounded history, never mutated after creation.
type CascadeReconstruction struct {
	ID                 string         `json:"id"`
	ChainID            string         `json:"chainId"`
	Phases             []CascadePhase `json:"phases"`
	RootNode           CausalNode     `json:"rootNode"`
	Amplifiers         []CausalNode   `json:"amplifiers"`
	Dampeners          []CausalNode   `json:"dampeners"`
	PeakSeverity       float64        `json:"peakSeverity"`
	TotalDuration      time.Duration  `json:"totalDuration"`
	AffectedSubsystems []string       `json:"affectedSubsystems"`
	Resolution         Resolution     `json:"resolution"`
	Confidence         float64        `json:"confidence"` // 0-1
	ReconstructedAt    time.Time      `json:"reconstructedAt"`
}
