package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/helixtrade/causegraph/internal/clock"
	"github.com/helixtrade/causegraph/internal/graph"
	"github.com/helixtrade/causegraph/internal/logging"
	"github.com/helixtrade/causegraph/internal/models"
)

// RootCauseAnalyzer turns the graph's strongest chain into a full root cause
// result. Results are transient computation artifacts: every Analyze call
// starts from freshly extracted chains.
type RootCauseAnalyzer struct {
	store     *graph.Store
	extractor *ChainExtractor
	clk       clock.Clock
	logger    *logging.Logger
}

// NewRootCauseAnalyzer creates an analyzer over the given store.
func NewRootCauseAnalyzer(store *graph.Store, extractor *ChainExtractor, clk clock.Clock) *RootCauseAnalyzer {
	return &RootCauseAnalyzer{
		store:     store,
		extractor: extractor,
		clk:       clk,
		logger:    logging.GetLogger("analysis.rootcause"),
	}
}

// Analyze rebuilds all chains and derives the result from the strongest one.
// Returns nil when no chain of at least MinChainNodes exists; the caller
// decides whether that warrants an unclear-cause notification.
func (a *RootCauseAnalyzer) Analyze() *models.RootCauseResult {
	chains := a.extractor.ExtractChains()
	if len(chains) == 0 {
		a.logger.Debug("no causal chains detected")
		return nil
	}

	best := chains[0]
	for _, chain := range chains[1:] {
		if chain.Score > best.Score {
			best = chain
		}
	}

	primary := best.Root()
	secondary := a.secondaryCauses(best, primary)
	tertiary := a.tertiaryCauses(best, primary, secondary)
	hidden := a.hiddenCauses(primary, secondary, tertiary)
	evidence := a.buildEvidence(best)

	result := &models.RootCauseResult{
		ID:              fmt.Sprintf("rca-%s", uuid.New().String()),
		PrimaryCause:    &primary,
		SecondaryCauses: secondary,
		TertiaryCauses:  tertiary,
		HiddenCauses:    hidden,
		Chain:           &best,
		Probability:     a.probability(best, evidence),
		Confidence:      a.confidence(best, evidence),
		Evidence:        evidence,
		AnalyzedAt:      a.clk.Now(),
	}
	result.Explanation = buildExplanation(result)
	result.Recommendations = buildRecommendations(result)

	a.logger.InfoWithFields("root cause identified",
		logging.Field("primary", primary.Subsystem),
		logging.Field("chain_length", best.Length),
		logging.Field("probability", fmt.Sprintf("%.2f", result.Probability)),
	)
	return result
}

// secondaryCauses are chain nodes directly reached from the primary via an
// edge of at least SecondaryInfluenceThreshold, strongest first, capped.
func (a *RootCauseAnalyzer) secondaryCauses(chain models.CausalChain, primary models.CausalNode) []models.CausalNode {
	members := chainMembers(chain)
	causes := []models.CausalNode{}
	for _, edge := range a.store.OutgoingEdges(primary.ID) {
		if len(causes) >= MaxSecondaryCauses {
			break
		}
		if edge.Influence < SecondaryInfluenceThreshold || !members[edge.ToID] {
			continue
		}
		if node, ok := a.store.Node(edge.ToID); ok {
			causes = append(causes, node)
		}
	}
	return causes
}

// tertiaryCauses are the remaining chain nodes touched by any edge of at
// least TertiaryInfluenceThreshold, capped, excluding primary/secondary.
func (a *RootCauseAnalyzer) tertiaryCauses(chain models.CausalChain, primary models.CausalNode, secondary []models.CausalNode) []models.CausalNode {
	classified := map[string]bool{primary.ID: true}
	for _, c := range secondary {
		classified[c.ID] = true
	}

	causes := []models.CausalNode{}
	for _, node := range chain.Nodes {
		if len(causes) >= MaxTertiaryCauses {
			break
		}
		if classified[node.ID] {
			continue
		}
		if a.touchedAbove(node.ID, TertiaryInfluenceThreshold) {
			causes = append(causes, node)
		}
	}
	return causes
}

func (a *RootCauseAnalyzer) touchedAbove(nodeID string, threshold float64) bool {
	for _, edge := range a.store.IncomingEdges(nodeID) {
		if edge.Influence >= threshold {
			return true
		}
	}
	for _, edge := range a.store.OutgoingEdges(nodeID) {
		if edge.Influence >= threshold {
			return true
		}
	}
	return false
}

// hiddenCauses scans the whole graph for nodes whose mean incoming influence
// lies strictly between HiddenInfluenceMin and HiddenInfluenceMax: weak but
// persistent signals the tiering above would miss. Strongest mean first,
// capped at MaxHiddenCauses.
func (a *RootCauseAnalyzer) hiddenCauses(primary models.CausalNode, secondary, tertiary []models.CausalNode) []models.CausalNode {
	classified := map[string]bool{primary.ID: true}
	for _, c := range secondary {
		classified[c.ID] = true
	}
	for _, c := range tertiary {
		classified[c.ID] = true
	}

	type scored struct {
		node models.CausalNode
		mean float64
	}
	candidates := []scored{}
	for _, node := range a.store.Nodes() {
		if classified[node.ID] {
			continue
		}
		mean, ok := a.store.MeanIncomingInfluence(node.ID)
		if !ok {
			continue
		}
		if mean > HiddenInfluenceMin && mean < HiddenInfluenceMax {
			candidates = append(candidates, scored{node: node, mean: mean})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].mean != candidates[j].mean {
			return candidates[i].mean > candidates[j].mean
		}
		return candidates[i].node.ID < candidates[j].node.ID
	})

	causes := []models.CausalNode{}
	for _, c := range candidates {
		if len(causes) >= MaxHiddenCauses {
			break
		}
		causes = append(causes, c.node)
	}
	return causes
}

// probability blends chain score with the mean evidence strength.
func (a *RootCauseAnalyzer) probability(chain models.CausalChain, evidence []models.EvidenceItem) float64 {
	meanStrength := 0.0
	if len(evidence) > 0 {
		for _, item := range evidence {
			meanStrength += item.Strength
		}
		meanStrength /= float64(len(evidence))
	}
	p := ProbabilityWeightChain*(chain.Score/models.MaxInfluence) +
		ProbabilityWeightEvidence*meanStrength
	return clamp01(p)
}

// confidence blends mean edge confidence with evidence volume.
func (a *RootCauseAnalyzer) confidence(chain models.CausalChain, evidence []models.EvidenceItem) float64 {
	meanEdgeConfidence := 0.0
	if len(chain.Edges) > 0 {
		for _, edge := range chain.Edges {
			meanEdgeConfidence += edge.Confidence
		}
		meanEdgeConfidence /= float64(len(chain.Edges))
	}
	volume := math.Min(1, float64(len(evidence))/EvidenceCountNormalizer)
	return clamp01(ResultWeightEdgeConfidence*meanEdgeConfidence + ResultWeightEvidenceCount*volume)
}

func chainMembers(chain models.CausalChain) map[string]bool {
	members := make(map[string]bool, len(chain.Nodes))
	for _, n := range chain.Nodes {
		members[n.ID] = true
	}
	return members
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
