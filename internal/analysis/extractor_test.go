package analysis

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixtrade/causegraph/internal/graph"
	"github.com/helixtrade/causegraph/internal/models"
)

var chainBase = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func testNode(id, subsystem string, offset time.Duration, severity float64) models.CausalNode {
	return models.CausalNode{
		ID:        id,
		Subsystem: subsystem,
		EventType: models.EventSpike,
		Timestamp: chainBase.Add(offset),
		Severity:  severity,
		Metrics:   models.NodeMetrics{Value: 50, Delta: 25},
	}
}

func testEdge(from, to string, influence float64) models.CausalEdge {
	return models.CausalEdge{
		ID:          fmt.Sprintf("edge-%s-%s", from, to),
		FromID:      from,
		ToID:        to,
		Influence:   influence,
		Level:       models.LevelForInfluence(influence),
		TimeLag:     30 * time.Second,
		Correlation: 0.7,
		Confidence:  0.6,
	}
}

func TestExtractChainsLinear(t *testing.T) {
	store := graph.NewStore()
	store.AddNode(testNode("a", "memory", 0, 3))
	store.AddNode(testNode("b", "execution", time.Minute, 4))
	store.AddNode(testNode("c", "risk", 2*time.Minute, 4))
	require.True(t, store.AddEdge(testEdge("a", "b", 70)))
	require.True(t, store.AddEdge(testEdge("b", "c", 65)))

	chains := NewChainExtractor(store, 10).ExtractChains()
	require.Len(t, chains, 1)

	chain := chains[0]
	assert.Equal(t, 3, chain.Length)
	assert.Equal(t, "a", chain.Root().ID)
	assert.Equal(t, "c", chain.Last().ID)
	assert.Equal(t, models.ShapeLinear, chain.Shape)
	assert.Equal(t, 2*time.Minute, chain.Duration)
	assert.Greater(t, chain.Score, 0.0)
}

func TestExtractChainsFollowsStrongestEdge(t *testing.T) {
	store := graph.NewStore()
	store.AddNode(testNode("a", "cpu", 0, 3))
	store.AddNode(testNode("weak", "disk", time.Minute, 2))
	store.AddNode(testNode("strong", "execution", time.Minute, 4))
	require.True(t, store.AddEdge(testEdge("a", "weak", 40)))
	require.True(t, store.AddEdge(testEdge("a", "strong", 85)))

	chains := NewChainExtractor(store, 10).ExtractChains()
	require.Len(t, chains, 1)
	assert.Equal(t, "strong", chains[0].Last().ID)
}

func TestExtractChainsTerminatesOnCycle(t *testing.T) {
	store := graph.NewStore()
	store.AddNode(testNode("a", "api", 0, 3))
	store.AddNode(testNode("b", "database", time.Minute, 3))
	store.AddNode(testNode("c", "cache", 2*time.Minute, 3))
	require.True(t, store.AddEdge(testEdge("a", "b", 50)))
	require.True(t, store.AddEdge(testEdge("b", "c", 50)))
	require.True(t, store.AddEdge(testEdge("c", "a", 50)))

	// the cycle means no node has zero in-degree, so no roots and no chains
	chains := NewChainExtractor(store, 10).ExtractChains()
	assert.Empty(t, chains)
}

func TestExtractChainsVisitedSetStopsRevisit(t *testing.T) {
	store := graph.NewStore()
	store.AddNode(testNode("root", "network", 0, 3))
	store.AddNode(testNode("b", "api", time.Minute, 3))
	store.AddNode(testNode("c", "database", 2*time.Minute, 3))
	require.True(t, store.AddEdge(testEdge("root", "b", 60)))
	require.True(t, store.AddEdge(testEdge("b", "c", 60)))
	require.True(t, store.AddEdge(testEdge("c", "b", 90)))

	chains := NewChainExtractor(store, 10).ExtractChains()
	require.Len(t, chains, 1)

	seen := map[string]int{}
	for _, n := range chains[0].Nodes {
		seen[n.ID]++
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "node %s appears more than once", id)
	}
}

func TestExtractChainsLengthClamp(t *testing.T) {
	store := graph.NewStore()
	for i := 0; i < 15; i++ {
		store.AddNode(testNode(fmt.Sprintf("n%02d", i), "cpu", time.Duration(i)*time.Minute, 3))
	}
	for i := 0; i < 14; i++ {
		require.True(t, store.AddEdge(testEdge(fmt.Sprintf("n%02d", i), fmt.Sprintf("n%02d", i+1), 70)))
	}

	chains := NewChainExtractor(store, 10).ExtractChains()
	require.Len(t, chains, 1)
	assert.Equal(t, 10, chains[0].Length)
	assert.Len(t, chains[0].Edges, 9)
}

func TestExtractChainsDiscardsSingletons(t *testing.T) {
	store := graph.NewStore()
	store.AddNode(testNode("lonely", "disk", 0, 5))

	chains := NewChainExtractor(store, 10).ExtractChains()
	assert.Empty(t, chains)
}

func TestChainScoreMonotonicInInfluence(t *testing.T) {
	build := func(influence float64) models.CausalChain {
		store := graph.NewStore()
		store.AddNode(testNode("a", "cpu", 0, 3))
		store.AddNode(testNode("b", "execution", time.Minute, 3))
		require.True(t, store.AddEdge(testEdge("a", "b", influence)))
		chains := NewChainExtractor(store, 10).ExtractChains()
		require.Len(t, chains, 1)
		return chains[0]
	}

	strong := build(80)
	weak := build(40)
	assert.Greater(t, strong.Score, weak.Score)
}

func TestClassifyShape(t *testing.T) {
	store := graph.NewStore()
	store.AddNode(testNode("a", "cpu", 0, 3))
	store.AddNode(testNode("b", "memory", time.Minute, 3))
	store.AddNode(testNode("c", "execution", 2*time.Minute, 4))
	// a fans out to b and c: branching from the chain's perspective
	require.True(t, store.AddEdge(testEdge("a", "b", 80)))
	require.True(t, store.AddEdge(testEdge("a", "c", 50)))
	require.True(t, store.AddEdge(testEdge("b", "c", 60)))

	chains := NewChainExtractor(store, 10).ExtractChains()
	require.Len(t, chains, 1)
	assert.Equal(t, models.ShapeComplex, chains[0].Shape)
}
