package analysis

import (
	"fmt"

	"github.com/helixtrade/causegraph/internal/models"
)

// buildEvidence collects supporting evidence for the chain. Each edge can
// contribute a correlation item and a time-alignment item; the chain as a
// whole contributes severity and trend items.
func (a *RootCauseAnalyzer) buildEvidence(chain models.CausalChain) []models.EvidenceItem {
	items := []models.EvidenceItem{}

	for _, edge := range chain.Edges {
		from, okFrom := a.store.Node(edge.FromID)
		to, okTo := a.store.Node(edge.ToID)
		if !okFrom || !okTo {
			continue
		}

		if edge.Correlation > CorrelationEvidenceMin {
			items = append(items, models.EvidenceItem{
				Type: models.EvidenceCorrelation,
				Description: fmt.Sprintf("%s and %s correlate at %.2f",
					from.Subsystem, to.Subsystem, edge.Correlation),
				Strength:  absFloat(edge.Correlation),
				Timestamp: to.Timestamp,
				SourceID:  edge.ID,
			})
		}

		if edge.TimeLag >= 0 && edge.TimeLag < TimeAlignmentWindow {
			strength := 1 - edge.TimeLag.Seconds()/TimeAlignmentWindow.Seconds()
			items = append(items, models.EvidenceItem{
				Type: models.EvidenceTimeAlignment,
				Description: fmt.Sprintf("%s followed %s within %s",
					to.Subsystem, from.Subsystem, edge.TimeLag.Round(timeLagRounding)),
				Strength:  clamp01(strength),
				Timestamp: to.Timestamp,
				SourceID:  edge.ID,
			})
		}
	}

	if meanSev := chain.MeanSeverity(); meanSev > SeverityEvidenceMin {
		root := chain.Root()
		items = append(items, models.EvidenceItem{
			Type: models.EvidenceSeverityMatch,
			Description: fmt.Sprintf("chain sustains mean severity %.1f across %d events",
				meanSev, chain.Length),
			Strength:  clamp01(meanSev / models.MaxSeverity),
			Timestamp: root.Timestamp,
			SourceID:  chain.ID,
		})
	}

	items = append(items, a.trendEvidence(chain)...)

	return items
}

// trendEvidence emits one item per consecutive chain pair whose value
// derivatives move in the same direction, a supplemental signal that the
// propagation is a single trend rather than unrelated blips. Strength is
// the fraction of the three derivatives whose signs agree.
func (a *RootCauseAnalyzer) trendEvidence(chain models.CausalChain) []models.EvidenceItem {
	items := []models.EvidenceItem{}
	for i := 0; i+1 < chain.Length; i++ {
		prev, next := chain.Nodes[i], chain.Nodes[i+1]
		matched := 0
		for _, pair := range [][2]float64{
			{prev.Metrics.Delta, next.Metrics.Delta},
			{prev.Metrics.Delta2, next.Metrics.Delta2},
			{prev.Metrics.Delta3, next.Metrics.Delta3},
		} {
			if (pair[0] > 0 && pair[1] > 0) || (pair[0] < 0 && pair[1] < 0) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		items = append(items, models.EvidenceItem{
			Type: models.EvidenceTrendMatch,
			Description: fmt.Sprintf("%s and %s trend together on %d of 3 derivatives",
				prev.Subsystem, next.Subsystem, matched),
			Strength:  float64(matched) / trendDerivativeCount,
			Timestamp: next.Timestamp,
			SourceID:  chain.ID,
		})
	}
	return items
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
