// Package cascade segments a winning causal chain into its temporal arc:
// named phases from initiation through decline, plus the nodes that
// amplified or dampened the episode and a classification of how it ended.
package cascade

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/helixtrade/causegraph/internal/clock"
	"github.com/helixtrade/causegraph/internal/logging"
	"github.com/helixtrade/causegraph/internal/models"
)

const (
	// AmplifierAccelThreshold and AmplifierJerkThreshold flag nodes whose
	// second or third derivative shows the cascade gaining energy.
	AmplifierAccelThreshold = 5.0
	AmplifierJerkThreshold  = 2.0
	// DampenerAccelThreshold flags nodes actively absorbing the cascade.
	DampenerAccelThreshold = -5.0

	// PeakWindow is the nominal span attributed to the single peak node.
	PeakWindow = 60 * time.Second
	// AutoResolveElapsed: a cascade with no activity for this long is
	// considered resolved on its own.
	AutoResolveElapsed = 5 * time.Minute
	// DampenedSeverityMax: a cascade whose final event sits below this
	// severity was absorbed rather than resolved.
	DampenedSeverityMax = 2.0
)

// Reconstructor builds cascade reconstructions from causal chains.
type Reconstructor struct {
	clk    clock.Clock
	logger *logging.Logger
}

// NewReconstructor creates a reconstructor using the given clock for
// resolution classification.
func NewReconstructor(clk clock.Clock) *Reconstructor {
	return &Reconstructor{
		clk:    clk,
		logger: logging.GetLogger("analysis.cascade"),
	}
}

// Reconstruct segments the chain into phases. The chain must have at least
// one node; callers pass the winning chain of a root cause analysis.
func (r *Reconstructor) Reconstruct(chain models.CausalChain) models.CascadeReconstruction {
	root := chain.Root()
	peakIdx := peakIndex(chain.Nodes)
	peak := chain.Nodes[peakIdx]

	reconstruction := models.CascadeReconstruction{
		ID:                 fmt.Sprintf("cascade-%s", uuid.New().String()),
		ChainID:            chain.ID,
		Phases:             r.buildPhases(chain, peakIdx),
		RootNode:           root,
		Amplifiers:         amplifiers(chain.Nodes),
		Dampeners:          dampeners(chain.Nodes),
		PeakSeverity:       peak.Severity,
		TotalDuration:      chain.Duration,
		AffectedSubsystems: affectedSubsystems(chain.Nodes),
		Resolution:         r.classifyResolution(chain),
		Confidence:         chain.Score / models.MaxInfluence,
		ReconstructedAt:    r.clk.Now(),
	}

	r.logger.DebugWithFields("cascade reconstructed",
		logging.Field("chain", chain.ID),
		logging.Field("phases", len(reconstruction.Phases)),
		logging.Field("resolution", string(reconstruction.Resolution)),
	)
	return reconstruction
}

// buildPhases emits phases in fixed order: initiation, propagation (only if
// the peak is not the root), peak, decline (only if the peak is not the
// final node).
func (r *Reconstructor) buildPhases(chain models.CausalChain, peakIdx int) []models.CascadePhase {
	root := chain.Root()
	peak := chain.Nodes[peakIdx]
	last := chain.Last()

	phases := []models.CascadePhase{{
		Name:        models.PhaseInitiation,
		StartTime:   root.Timestamp,
		EndTime:     root.Timestamp,
		Severity:    root.Severity,
		NodeIDs:     []string{root.ID},
		Description: fmt.Sprintf("cascade initiated by %s event in %s", root.EventType, root.Subsystem),
	}}

	if peakIdx > 0 {
		span := chain.Nodes[:peakIdx+1]
		phases = append(phases, models.CascadePhase{
			Name:        models.PhasePropagation,
			StartTime:   root.Timestamp,
			EndTime:     peak.Timestamp,
			Duration:    peak.Timestamp.Sub(root.Timestamp),
			Severity:    meanSeverity(span),
			NodeIDs:     nodeIDs(span),
			Description: fmt.Sprintf("spread across %d subsystems", len(affectedSubsystems(span))),
		})
	}

	phases = append(phases, models.CascadePhase{
		Name:        models.PhasePeak,
		StartTime:   peak.Timestamp,
		EndTime:     peak.Timestamp.Add(PeakWindow),
		Duration:    PeakWindow,
		Severity:    peak.Severity,
		NodeIDs:     []string{peak.ID},
		Description: fmt.Sprintf("peak severity %.1f in %s", peak.Severity, peak.Subsystem),
	})

	if peakIdx < chain.Length-1 {
		span := chain.Nodes[peakIdx:]
		phases = append(phases, models.CascadePhase{
			Name:        models.PhaseDecline,
			StartTime:   peak.Timestamp,
			EndTime:     last.Timestamp,
			Duration:    last.Timestamp.Sub(peak.Timestamp),
			Severity:    meanSeverity(span),
			NodeIDs:     nodeIDs(span),
			Description: fmt.Sprintf("severity receding toward %s", last.Subsystem),
		})
	}
	return phases
}

// classifyResolution looks at the final chain node: a recovery event or a
// long quiet period means the cascade burned out on its own, a low final
// severity means something absorbed it, anything else is still live.
func (r *Reconstructor) classifyResolution(chain models.CausalChain) models.Resolution {
	last := chain.Last()
	elapsed := r.clk.Now().Sub(last.Timestamp)
	switch {
	case last.EventType == models.EventRecovery || elapsed > AutoResolveElapsed:
		return models.ResolutionAutoResolved
	case last.Severity < DampenedSeverityMax:
		return models.ResolutionDampened
	default:
		return models.ResolutionOngoing
	}
}

// peakIndex returns the index of the first node carrying the maximum
// severity.
func peakIndex(nodes []models.CausalNode) int {
	idx := 0
	for i, n := range nodes {
		if n.Severity > nodes[idx].Severity {
			idx = i
		}
	}
	return idx
}

func amplifiers(nodes []models.CausalNode) []models.CausalNode {
	out := []models.CausalNode{}
	for _, n := range nodes {
		if n.Metrics.Delta2 > AmplifierAccelThreshold || n.Metrics.Delta3 > AmplifierJerkThreshold {
			out = append(out, n)
		}
	}
	return out
}

func dampeners(nodes []models.CausalNode) []models.CausalNode {
	out := []models.CausalNode{}
	for _, n := range nodes {
		if n.Metrics.Delta2 < DampenerAccelThreshold || n.EventType == models.EventRecovery {
			out = append(out, n)
		}
	}
	return out
}

func affectedSubsystems(nodes []models.CausalNode) []string {
	seen := map[string]bool{}
	subsystems := []string{}
	for _, n := range nodes {
		if seen[n.Subsystem] {
			continue
		}
		seen[n.Subsystem] = true
		subsystems = append(subsystems, n.Subsystem)
	}
	sort.Strings(subsystems)
	return subsystems
}

func nodeIDs(nodes []models.CausalNode) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func meanSeverity(nodes []models.CausalNode) float64 {
	if len(nodes) == 0 {
		return 0
	}
	total := 0.0
	for _, n := range nodes {
		total += n.Severity
	}
	return total / float64(len(nodes))
}
