package analysis

import (
	"fmt"
	"strings"

	"github.com/helixtrade/causegraph/internal/models"
)

// buildExplanation renders a human-readable narrative of the result. The
// result must carry a non-nil primary cause and chain.
func buildExplanation(result *models.RootCauseResult) string {
	primary := result.PrimaryCause
	chain := result.Chain

	var b strings.Builder
	fmt.Fprintf(&b, "Root cause identified in subsystem %q: %s event at severity %.1f.",
		primary.Subsystem, primary.EventType, primary.Severity)
	fmt.Fprintf(&b, " The causal chain spans %d events over %s (%s shape, score %.1f).",
		chain.Length, chain.Duration.Round(timeLagRounding), chain.Shape, chain.Score)

	if len(result.SecondaryCauses) > 0 {
		fmt.Fprintf(&b, " It propagated directly into %s.",
			joinSubsystems(result.SecondaryCauses))
	}
	if len(result.TertiaryCauses) > 0 {
		fmt.Fprintf(&b, " Downstream impact reached %s.",
			joinSubsystems(result.TertiaryCauses))
	}
	if len(result.HiddenCauses) > 0 {
		fmt.Fprintf(&b, " Weak persistent signals from %s may be contributing.",
			joinSubsystems(result.HiddenCauses))
	}
	fmt.Fprintf(&b, " Probability %.0f%%, confidence %.0f%%, backed by %d evidence items.",
		result.Probability*100, result.Confidence*100, len(result.Evidence))
	return b.String()
}

// buildRecommendations derives actionable follow-ups from the cause tiers
// and the primary event type.
func buildRecommendations(result *models.RootCauseResult) []string {
	primary := result.PrimaryCause
	recs := []string{
		fmt.Sprintf("Investigate the %s subsystem first; it originated the chain.", primary.Subsystem),
	}

	switch primary.EventType {
	case models.EventSpike:
		recs = append(recs, fmt.Sprintf("Check for a load or input surge in %s around %s.",
			primary.Subsystem, primary.Timestamp.Format("15:04:05")))
	case models.EventDegradation, models.EventDrift:
		recs = append(recs, fmt.Sprintf("Review recent changes to %s; gradual decay suggests a slow leak or config drift.",
			primary.Subsystem))
	case models.EventFailure:
		recs = append(recs, fmt.Sprintf("Restart or failover %s and inspect its error logs.",
			primary.Subsystem))
	case models.EventThresholdBreach:
		recs = append(recs, fmt.Sprintf("Re-evaluate alert thresholds for %s against current load.",
			primary.Subsystem))
	}

	if len(result.SecondaryCauses) > 0 {
		recs = append(recs, fmt.Sprintf("Verify %s recovered after addressing the primary cause.",
			joinSubsystems(result.SecondaryCauses)))
	}
	if len(result.HiddenCauses) > 0 {
		recs = append(recs, fmt.Sprintf("Monitor %s for low-level anomalies masked by the main incident.",
			joinSubsystems(result.HiddenCauses)))
	}
	if result.Confidence < lowConfidenceHint {
		recs = append(recs, "Confidence is low; collect more events before acting on this diagnosis.")
	}
	return recs
}

func joinSubsystems(nodes []models.CausalNode) string {
	seen := map[string]bool{}
	names := []string{}
	for _, n := range nodes {
		if seen[n.Subsystem] {
			continue
		}
		seen[n.Subsystem] = true
		names = append(names, n.Subsystem)
	}
	return strings.Join(names, ", ")
}
