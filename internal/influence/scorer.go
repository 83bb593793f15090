// Package influence computes the 0-100 heuristic estimate that one observed
// event causally contributed to a later one, blending severity alignment,
// trend-momentum alignment, time decay, and a configured subsystem-affinity
// weight.
package influence

import (
	"math"
	"time"

	"github.com/helixtrade/causegraph/internal/config"
	"github.com/helixtrade/causegraph/internal/models"
)

// Scorer scores candidate cause->effect pairs. The affinity table is
// swappable at runtime so coupling knowledge can be hot-reloaded.
type Scorer struct {
	affinity *config.AffinityTable
	window   time.Duration
}

// NewScorer creates a scorer with the given affinity table and the engine's
// auto-connection look-back window (used for confidence recency).
func NewScorer(affinity *config.AffinityTable, window time.Duration) *Scorer {
	if affinity == nil {
		affinity = config.DefaultAffinityTable()
	}
	return &Scorer{affinity: affinity, window: window}
}

// SetAffinity replaces the affinity table.
func (s *Scorer) SetAffinity(table *config.AffinityTable) {
	if table != nil {
		s.affinity = table
	}
}

// SetWindow replaces the look-back window used for confidence recency.
func (s *Scorer) SetWindow(window time.Duration) {
	if window > 0 {
		s.window = window
	}
}

// Score computes the influence of cause on effect, clamped to [0,100].
// The time lag is effect.Timestamp minus cause.Timestamp.
func (s *Scorer) Score(cause, effect models.CausalNode) float64 {
	lag := effect.Timestamp.Sub(cause.Timestamp)
	total := s.severityAlignment(cause, effect) +
		s.trendAlignment(cause, effect) +
		s.timeLagBonus(lag) +
		s.affinity.Weight(cause.Subsystem, effect.Subsystem)
	return models.ClampInfluence(total)
}

// severityAlignment rewards similar severities: 30 points at zero distance,
// 5 points lost per unit, floor at 0.
func (s *Scorer) severityAlignment(cause, effect models.CausalNode) float64 {
	penalty := SeverityPenaltyPerUnit * math.Abs(cause.Severity-effect.Severity)
	return math.Max(0, SeverityBasePoints-penalty)
}

// trendAlignment awards points per derivative pair whose signs agree. A pair
// only matches when both values are strictly nonzero and share a sign: flat
// history carries no momentum signal.
func (s *Scorer) trendAlignment(cause, effect models.CausalNode) float64 {
	matches := 0.0
	pairs := [][2]float64{
		{cause.Metrics.Delta, effect.Metrics.Delta},
		{cause.Metrics.Delta2, effect.Metrics.Delta2},
		{cause.Metrics.Delta3, effect.Metrics.Delta3},
	}
	for _, p := range pairs {
		if signsMatch(p[0], p[1]) {
			matches++
		}
	}
	return matches * TrendPointsPerMatch
}

func signsMatch(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

// timeLagBonus decays linearly from 20 points at zero lag to zero at ten
// minutes. Negative lag (effect before cause) earns nothing.
func (s *Scorer) timeLagBonus(lag time.Duration) float64 {
	if lag < 0 {
		return 0
	}
	minutes := float64(lag.Milliseconds()) / 60_000.0
	return math.Max(0, LagBasePoints-LagDecayPerMinute*minutes)
}

// Confidence derives a 0-1 edge confidence from its influence score, the
// correlation-strength figure, and how recent the lag is relative to the
// look-back window.
func (s *Scorer) Confidence(score, correlation float64, lag time.Duration) float64 {
	recency := 0.0
	if s.window > 0 && lag >= 0 {
		recency = math.Max(0, 1.0-float64(lag)/float64(s.window))
	}
	confidence := ConfidenceWeightInfluence*(score/models.MaxInfluence) +
		ConfidenceWeightCorrelation*math.Abs(correlation) +
		ConfidenceWeightRecency*recency
	if confidence > 1 {
		return 1
	}
	if confidence < 0 {
		return 0
	}
	return confidence
}
