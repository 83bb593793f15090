// Package analysis extracts causal chains from the influence graph and
// derives root cause results from the strongest one: cause tiers, an
// evidence trail, probability and confidence scores, and a templated
// explanation with remediation suggestions.
package analysis

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/helixtrade/causegraph/internal/graph"
	"github.com/helixtrade/causegraph/internal/logging"
	"github.com/helixtrade/causegraph/internal/models"
)

// ChainExtractor discovers candidate causal chains by walking greedily from
// every root node (zero incoming edges), always following the single
// strongest outgoing edge.
type ChainExtractor struct {
	store     *graph.Store
	maxLength int
	logger    *logging.Logger
}

// NewChainExtractor creates an extractor bounded by maxLength nodes per chain.
func NewChainExtractor(store *graph.Store, maxLength int) *ChainExtractor {
	return &ChainExtractor{
		store:     store,
		maxLength: maxLength,
		logger:    logging.GetLogger("analysis.chains"),
	}
}

// SetMaxLength replaces the per-chain node bound.
func (e *ChainExtractor) SetMaxLength(maxLength int) {
	if maxLength > 0 {
		e.maxLength = maxLength
	}
}

// ExtractChains walks from every root and returns all chains of at least
// MinChainNodes nodes. Chains are recomputed from scratch on every call.
func (e *ChainExtractor) ExtractChains() []models.CausalChain {
	chains := []models.CausalChain{}
	for _, root := range e.store.Roots() {
		nodes, edges := e.walk(root)
		if len(nodes) < MinChainNodes {
			continue
		}
		chains = append(chains, e.buildChain(nodes, edges))
	}
	e.logger.Debug("extracted %d chains from %d nodes", len(chains), e.store.NodeCount())
	return chains
}

// walk follows the strongest outgoing edge from node to node. The visited
// set grows strictly, so the walk terminates even on cyclic graphs: reaching
// an already-visited node ends the chain.
func (e *ChainExtractor) walk(root models.CausalNode) ([]models.CausalNode, []models.CausalEdge) {
	nodes := []models.CausalNode{root}
	edges := []models.CausalEdge{}
	visited := map[string]bool{root.ID: true}

	current := root
	for len(nodes) < e.maxLength {
		outgoing := e.store.OutgoingEdges(current.ID)
		if len(outgoing) == 0 {
			break
		}
		// OutgoingEdges sorts by influence descending; the head is the
		// single strongest edge and the only one followed.
		strongest := outgoing[0]
		if visited[strongest.ToID] {
			break
		}
		next, ok := e.store.Node(strongest.ToID)
		if !ok {
			break
		}
		visited[next.ID] = true
		nodes = append(nodes, next)
		edges = append(edges, strongest)
		current = next
	}
	return nodes, edges
}

// buildChain assembles the chain value: score, shape, and time span.
func (e *ChainExtractor) buildChain(nodes []models.CausalNode, edges []models.CausalEdge) models.CausalChain {
	chain := models.CausalChain{
		ID:        fmt.Sprintf("chain-%s", uuid.New().String()),
		Nodes:     nodes,
		Edges:     edges,
		Length:    len(nodes),
		StartTime: nodes[0].Timestamp,
		EndTime:   nodes[len(nodes)-1].Timestamp,
	}
	chain.Duration = chain.EndTime.Sub(chain.StartTime)
	chain.Score = e.scoreChain(chain)
	chain.Shape = e.classifyShape(chain)
	return chain
}

// scoreChain blends mean edge influence, mean edge confidence, and max node
// severity into a 0-100 aggregate.
func (e *ChainExtractor) scoreChain(chain models.CausalChain) float64 {
	meanInfluence := 0.0
	meanConfidence := 0.0
	if len(chain.Edges) > 0 {
		for _, edge := range chain.Edges {
			meanInfluence += edge.Influence
			meanConfidence += edge.Confidence
		}
		meanInfluence /= float64(len(chain.Edges))
		meanConfidence /= float64(len(chain.Edges))
	}

	score := ChainWeightInfluence*meanInfluence +
		ChainWeightConfidence*(ConfidenceScale*meanConfidence) +
		ChainWeightSeverity*(SeverityScale*chain.MaxSeverity())
	return models.ClampInfluence(score)
}

// classifyShape inspects graph edges whose both endpoints are chain nodes:
// any out-degree > 1 means branching, any in-degree > 1 means merging, both
// mean complex, neither linear.
func (e *ChainExtractor) classifyShape(chain models.CausalChain) models.ChainShape {
	members := make(map[string]bool, len(chain.Nodes))
	for _, n := range chain.Nodes {
		members[n.ID] = true
	}

	branching := false
	merging := false
	for _, n := range chain.Nodes {
		out := 0
		for _, edge := range e.store.OutgoingEdges(n.ID) {
			if members[edge.ToID] {
				out++
			}
		}
		in := 0
		for _, edge := range e.store.IncomingEdges(n.ID) {
			if members[edge.FromID] {
				in++
			}
		}
		if out > 1 {
			branching = true
		}
		if in > 1 {
			merging = true
		}
	}

	switch {
	case branching && merging:
		return models.ShapeComplex
	case branching:
		return models.ShapeBranching
	case merging:
		return models.ShapeMerging
	default:
		return models.ShapeLinear
	}
}
