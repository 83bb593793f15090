package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixtrade/causegraph/internal/clock"
	"github.com/helixtrade/causegraph/internal/graph"
	"github.com/helixtrade/causegraph/internal/models"
)

func newTestAnalyzer(store *graph.Store) *RootCauseAnalyzer {
	extractor := NewChainExtractor(store, 10)
	return NewRootCauseAnalyzer(store, extractor, clock.NewManual(chainBase.Add(time.Hour)))
}

func TestAnalyzeEmptyGraph(t *testing.T) {
	store := graph.NewStore()
	result := newTestAnalyzer(store).Analyze()
	assert.Nil(t, result)
}

func TestAnalyzeNoChains(t *testing.T) {
	store := graph.NewStore()
	store.AddNode(testNode("solo", "cpu", 0, 4))

	result := newTestAnalyzer(store).Analyze()
	assert.Nil(t, result)
}

func TestAnalyzePrimaryIsChainRoot(t *testing.T) {
	store := graph.NewStore()
	store.AddNode(testNode("mem", "memory", 0, 4))
	store.AddNode(testNode("exec", "execution", time.Minute, 5))
	require.True(t, store.AddEdge(testEdge("mem", "exec", 75)))

	result := newTestAnalyzer(store).Analyze()
	require.NotNil(t, result)
	require.NotNil(t, result.PrimaryCause)
	assert.Equal(t, "mem", result.PrimaryCause.ID)
	assert.Equal(t, "memory", result.PrimaryCause.Subsystem)
	assert.NotEmpty(t, result.ID)
	assert.NotEmpty(t, result.Explanation)
	assert.NotEmpty(t, result.Recommendations)
	assert.Equal(t, chainBase.Add(time.Hour), result.AnalyzedAt)
}

func TestAnalyzePicksStrongestChain(t *testing.T) {
	store := graph.NewStore()
	// weak chain
	store.AddNode(testNode("w1", "disk", 0, 1))
	store.AddNode(testNode("w2", "cache", time.Minute, 1))
	require.True(t, store.AddEdge(testEdge("w1", "w2", 35)))
	// strong chain
	store.AddNode(testNode("s1", "network", 0, 4))
	store.AddNode(testNode("s2", "market-data", time.Minute, 5))
	require.True(t, store.AddEdge(testEdge("s1", "s2", 90)))

	result := newTestAnalyzer(store).Analyze()
	require.NotNil(t, result)
	assert.Equal(t, "s1", result.PrimaryCause.ID)
}

func TestAnalyzeSecondaryCauses(t *testing.T) {
	store := graph.NewStore()
	store.AddNode(testNode("root", "memory", 0, 4))
	store.AddNode(testNode("next", "execution", time.Minute, 4))
	store.AddNode(testNode("tail", "risk", 2*time.Minute, 3))
	require.True(t, store.AddEdge(testEdge("root", "next", 70)))
	require.True(t, store.AddEdge(testEdge("next", "tail", 30)))

	result := newTestAnalyzer(store).Analyze()
	require.NotNil(t, result)
	require.Len(t, result.SecondaryCauses, 1)
	assert.Equal(t, "next", result.SecondaryCauses[0].ID)

	// tail is reached by a 30-influence edge, below the tertiary threshold
	assert.Empty(t, result.TertiaryCauses)
}

func TestAnalyzeSecondaryThreshold(t *testing.T) {
	store := graph.NewStore()
	store.AddNode(testNode("root", "cpu", 0, 3))
	store.AddNode(testNode("next", "execution", time.Minute, 3))
	require.True(t, store.AddEdge(testEdge("root", "next", 55)))

	result := newTestAnalyzer(store).Analyze()
	require.NotNil(t, result)
	// 55 < 60: next drops to the tertiary tier via its 55-influence edge
	assert.Empty(t, result.SecondaryCauses)
	require.Len(t, result.TertiaryCauses, 1)
	assert.Equal(t, "next", result.TertiaryCauses[0].ID)
}

func TestAnalyzeHiddenCauses(t *testing.T) {
	store := graph.NewStore()
	store.AddNode(testNode("root", "memory", 0, 4))
	store.AddNode(testNode("next", "execution", time.Minute, 4))
	require.True(t, store.AddEdge(testEdge("root", "next", 70)))

	// off-chain node with mean incoming influence inside (20, 40)
	store.AddNode(testNode("quiet", "disk", 30*time.Second, 1))
	store.AddNode(testNode("feeder", "cache", 0, 1))
	require.True(t, store.AddEdge(testEdge("feeder", "quiet", 30)))

	result := newTestAnalyzer(store).Analyze()
	require.NotNil(t, result)
	require.Len(t, result.HiddenCauses, 1)
	assert.Equal(t, "quiet", result.HiddenCauses[0].ID)
}

func TestAnalyzeHiddenCauseBoundsExclusive(t *testing.T) {
	for _, influence := range []float64{20, 40} {
		store := graph.NewStore()
		store.AddNode(testNode("root", "memory", 0, 4))
		store.AddNode(testNode("next", "execution", time.Minute, 4))
		require.True(t, store.AddEdge(testEdge("root", "next", 70)))

		store.AddNode(testNode("quiet", "disk", 30*time.Second, 1))
		store.AddNode(testNode("feeder", "cache", 0, 1))
		require.True(t, store.AddEdge(testEdge("feeder", "quiet", influence)))

		result := newTestAnalyzer(store).Analyze()
		require.NotNil(t, result)
		assert.Empty(t, result.HiddenCauses, "influence %v must not qualify", influence)
	}
}

func TestAnalyzeProbabilityAndConfidenceBounds(t *testing.T) {
	store := graph.NewStore()
	store.AddNode(testNode("a", "network", 0, 5))
	store.AddNode(testNode("b", "market-data", 30*time.Second, 5))
	store.AddNode(testNode("c", "strategy", time.Minute, 5))
	require.True(t, store.AddEdge(testEdge("a", "b", 95)))
	require.True(t, store.AddEdge(testEdge("b", "c", 90)))

	result := newTestAnalyzer(store).Analyze()
	require.NotNil(t, result)
	assert.GreaterOrEqual(t, result.Probability, 0.0)
	assert.LessOrEqual(t, result.Probability, 1.0)
	assert.GreaterOrEqual(t, result.Confidence, 0.0)
	assert.LessOrEqual(t, result.Confidence, 1.0)
	assert.Greater(t, result.Probability, 0.5)
}

func TestBuildEvidence(t *testing.T) {
	store := graph.NewStore()
	store.AddNode(testNode("a", "memory", 0, 4))
	store.AddNode(testNode("b", "execution", 30*time.Second, 4))
	require.True(t, store.AddEdge(testEdge("a", "b", 75)))

	result := newTestAnalyzer(store).Analyze()
	require.NotNil(t, result)

	types := map[models.EvidenceType]int{}
	for _, item := range result.Evidence {
		types[item.Type]++
		assert.GreaterOrEqual(t, item.Strength, 0.0)
		assert.LessOrEqual(t, item.Strength, 1.0)
		assert.NotEmpty(t, item.SourceID)
		assert.NotEmpty(t, item.Description)
	}
	// edge carries correlation 0.7 (> 0.6) and lag 30s (< 60s); both nodes
	// have rising deltas and mean severity 4 (> 3.0)
	assert.Equal(t, 1, types[models.EvidenceCorrelation])
	assert.Equal(t, 1, types[models.EvidenceTimeAlignment])
	assert.Equal(t, 1, types[models.EvidenceSeverityMatch])
	assert.Equal(t, 1, types[models.EvidenceTrendMatch])
}

func TestBuildEvidenceTimeAlignmentStrength(t *testing.T) {
	store := graph.NewStore()
	store.AddNode(testNode("a", "memory", 0, 2))
	store.AddNode(testNode("b", "execution", 15*time.Second, 2))
	edge := testEdge("a", "b", 75)
	edge.TimeLag = 15 * time.Second
	edge.Correlation = 0.3 // below the correlation evidence threshold
	require.True(t, store.AddEdge(edge))

	result := newTestAnalyzer(store).Analyze()
	require.NotNil(t, result)

	var alignment *models.EvidenceItem
	for i := range result.Evidence {
		if result.Evidence[i].Type == models.EvidenceTimeAlignment {
			alignment = &result.Evidence[i]
		}
	}
	require.NotNil(t, alignment)
	assert.InDelta(t, 0.75, alignment.Strength, 1e-9)
}

func TestExplanationMentionsTiers(t *testing.T) {
	store := graph.NewStore()
	store.AddNode(testNode("root", "memory", 0, 4))
	store.AddNode(testNode("next", "execution", time.Minute, 5))
	require.True(t, store.AddEdge(testEdge("root", "next", 80)))

	result := newTestAnalyzer(store).Analyze()
	require.NotNil(t, result)
	assert.Contains(t, result.Explanation, "memory")
	assert.Contains(t, result.Explanation, "execution")
	assert.Contains(t, result.Recommendations[0], "memory")
}
