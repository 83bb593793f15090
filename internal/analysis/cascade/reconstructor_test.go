package cascade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixtrade/causegraph/internal/clock"
	"github.com/helixtrade/causegraph/internal/models"
)

var cascadeBase = time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)

func cascadeNode(id, subsystem string, offset time.Duration, severity float64, eventType models.EventType) models.CausalNode {
	return models.CausalNode{
		ID:        id,
		Subsystem: subsystem,
		EventType: eventType,
		Timestamp: cascadeBase.Add(offset),
		Severity:  severity,
	}
}

func buildChain(nodes ...models.CausalNode) models.CausalChain {
	chain := models.CausalChain{
		ID:        "chain-test",
		Nodes:     nodes,
		Length:    len(nodes),
		StartTime: nodes[0].Timestamp,
		EndTime:   nodes[len(nodes)-1].Timestamp,
		Score:     75,
	}
	chain.Duration = chain.EndTime.Sub(chain.StartTime)
	return chain
}

func TestReconstructPhases(t *testing.T) {
	chain := buildChain(
		cascadeNode("a", "memory", 0, 2, models.EventSpike),
		cascadeNode("b", "execution", time.Minute, 3, models.EventDegradation),
		cascadeNode("c", "risk", 2*time.Minute, 5, models.EventFailure),
		cascadeNode("d", "api", 3*time.Minute, 2, models.EventAnomaly),
	)

	clk := clock.NewManual(cascadeBase.Add(4 * time.Minute))
	rec := NewReconstructor(clk).Reconstruct(chain)

	require.Len(t, rec.Phases, 4)
	assert.Equal(t, models.PhaseInitiation, rec.Phases[0].Name)
	assert.Equal(t, models.PhasePropagation, rec.Phases[1].Name)
	assert.Equal(t, models.PhasePeak, rec.Phases[2].Name)
	assert.Equal(t, models.PhaseDecline, rec.Phases[3].Name)

	assert.Equal(t, []string{"a"}, rec.Phases[0].NodeIDs)
	assert.Equal(t, []string{"a", "b", "c"}, rec.Phases[1].NodeIDs)
	assert.Equal(t, []string{"c"}, rec.Phases[2].NodeIDs)
	assert.Equal(t, []string{"c", "d"}, rec.Phases[3].NodeIDs)

	assert.InDelta(t, (2.0+3.0+5.0)/3.0, rec.Phases[1].Severity, 1e-9)
	assert.Equal(t, PeakWindow, rec.Phases[2].Duration)
	assert.Equal(t, 5.0, rec.PeakSeverity)
	assert.Equal(t, "a", rec.RootNode.ID)
	assert.Equal(t, 3*time.Minute, rec.TotalDuration)
	assert.Equal(t, []string{"api", "execution", "memory", "risk"}, rec.AffectedSubsystems)
	assert.InDelta(t, 0.75, rec.Confidence, 1e-9)
	assert.Equal(t, cascadeBase.Add(4*time.Minute), rec.ReconstructedAt)
}

func TestReconstructPeakAtRoot(t *testing.T) {
	chain := buildChain(
		cascadeNode("a", "network", 0, 5, models.EventFailure),
		cascadeNode("b", "market-data", time.Minute, 3, models.EventDegradation),
	)

	rec := NewReconstructor(clock.NewManual(cascadeBase.Add(2 * time.Minute))).Reconstruct(chain)

	// peak == root: no propagation phase, decline still follows
	require.Len(t, rec.Phases, 3)
	assert.Equal(t, models.PhaseInitiation, rec.Phases[0].Name)
	assert.Equal(t, models.PhasePeak, rec.Phases[1].Name)
	assert.Equal(t, models.PhaseDecline, rec.Phases[2].Name)
}

func TestReconstructPeakAtEnd(t *testing.T) {
	chain := buildChain(
		cascadeNode("a", "cpu", 0, 2, models.EventSpike),
		cascadeNode("b", "execution", time.Minute, 4, models.EventFailure),
	)

	rec := NewReconstructor(clock.NewManual(cascadeBase.Add(2 * time.Minute))).Reconstruct(chain)

	// peak is the last node: no decline phase
	require.Len(t, rec.Phases, 3)
	assert.Equal(t, models.PhaseInitiation, rec.Phases[0].Name)
	assert.Equal(t, models.PhasePropagation, rec.Phases[1].Name)
	assert.Equal(t, models.PhasePeak, rec.Phases[2].Name)
}

func TestReconstructAmplifiersAndDampeners(t *testing.T) {
	amp := cascadeNode("amp", "memory", 0, 3, models.EventSpike)
	amp.Metrics = models.NodeMetrics{Delta2: 8}
	jerk := cascadeNode("jerk", "cpu", time.Minute, 3, models.EventSpike)
	jerk.Metrics = models.NodeMetrics{Delta3: 3}
	damp := cascadeNode("damp", "execution", 2*time.Minute, 2, models.EventAnomaly)
	damp.Metrics = models.NodeMetrics{Delta2: -6}
	recov := cascadeNode("recov", "risk", 3*time.Minute, 1, models.EventRecovery)

	rec := NewReconstructor(clock.NewManual(cascadeBase.Add(4 * time.Minute))).
		Reconstruct(buildChain(amp, jerk, damp, recov))

	require.Len(t, rec.Amplifiers, 2)
	assert.Equal(t, "amp", rec.Amplifiers[0].ID)
	assert.Equal(t, "jerk", rec.Amplifiers[1].ID)

	require.Len(t, rec.Dampeners, 2)
	assert.Equal(t, "damp", rec.Dampeners[0].ID)
	assert.Equal(t, "recov", rec.Dampeners[1].ID)
}

func TestClassifyResolution(t *testing.T) {
	tests := []struct {
		name     string
		lastType models.EventType
		lastSev  float64
		elapsed  time.Duration
		want     models.Resolution
	}{
		{"recovery event", models.EventRecovery, 3, time.Minute, models.ResolutionAutoResolved},
		{"quiet period", models.EventFailure, 4, 6 * time.Minute, models.ResolutionAutoResolved},
		{"low final severity", models.EventAnomaly, 1, time.Minute, models.ResolutionDampened},
		{"still live", models.EventFailure, 4, time.Minute, models.ResolutionOngoing},
		{"exactly five minutes is not quiet", models.EventFailure, 4, 5 * time.Minute, models.ResolutionOngoing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := buildChain(
				cascadeNode("a", "memory", 0, 3, models.EventSpike),
				cascadeNode("b", "execution", time.Minute, tt.lastSev, tt.lastType),
			)
			clk := clock.NewManual(chain.EndTime.Add(tt.elapsed))
			rec := NewReconstructor(clk).Reconstruct(chain)
			assert.Equal(t, tt.want, rec.Resolution)
		})
	}
}
