// Package engine wires the causal diagnosis pipeline together: event
// ingestion with derivative tracking, influence-scored auto-connection,
// chain extraction, root cause analysis, cascade reconstruction, retention,
// and observer notifications. Every operation runs to completion on the
// calling goroutine; an Engine instance is owned by exactly one caller and
// is not safe for concurrent use.
package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/helixtrade/causegraph/internal/analysis"
	"github.com/helixtrade/causegraph/internal/analysis/cascade"
	"github.com/helixtrade/causegraph/internal/clock"
	"github.com/helixtrade/causegraph/internal/config"
	"github.com/helixtrade/causegraph/internal/graph"
	"github.com/helixtrade/causegraph/internal/influence"
	"github.com/helixtrade/causegraph/internal/logging"
	"github.com/helixtrade/causegraph/internal/models"
	"github.com/helixtrade/causegraph/internal/notify"
)

// Spike notification thresholds over the first and second differences of a
// subsystem's value series.
const (
	SpikeDeltaThreshold  = 20.0
	SpikeDelta2Threshold = 10.0
)

// subsystemHistory is the cached tail of a subsystem's observation series,
// enough to derive the next event's first three differences.
type subsystemHistory struct {
	metrics models.NodeMetrics
	depth   int // prior observations, saturates at 3
}

// Engine is the diagnosis engine. Construct one per logical domain (for
// example one per trading account); instances share nothing.
type Engine struct {
	cfg       config.Config
	clk       clock.Clock
	store     *graph.Store
	scorer    *influence.Scorer
	extractor *analysis.ChainExtractor
	analyzer  *analysis.RootCauseAnalyzer
	cascades  *cascade.Reconstructor
	bus       *notify.Bus
	recent    *lru.Cache[string, subsystemHistory]
	history   []models.CascadeReconstruction
	current   *models.RootCauseResult
	metrics   *Metrics
	logger    *logging.Logger
}

// Option customizes engine construction.
type Option func(*options)

type options struct {
	clk      clock.Clock
	affinity *config.AffinityTable
	reg      prometheus.Registerer
}

// WithClock injects the time source. Tests use a manual clock to drive
// retention and resolution deterministically.
func WithClock(clk clock.Clock) Option {
	return func(o *options) { o.clk = clk }
}

// WithAffinity overrides the default subsystem affinity table.
func WithAffinity(table *config.AffinityTable) Option {
	return func(o *options) { o.affinity = table }
}

// WithRegisterer registers engine metrics against the given registerer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.reg = reg }
}

// New constructs an engine from the given configuration. Out-of-range
// configuration values are normalized to defaults rather than rejected.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clk == nil {
		o.clk = clock.NewSystem()
	}
	if o.affinity == nil {
		o.affinity = config.DefaultAffinityTable()
	}

	cfg = cfg.Normalized()
	recent, err := lru.New[string, subsystemHistory](cfg.MaxTrackedSubsystems)
	if err != nil {
		return nil, fmt.Errorf("creating subsystem cache: %w", err)
	}

	store := graph.NewStore()
	scorer := influence.NewScorer(o.affinity, cfg.TimeLagWindow)
	extractor := analysis.NewChainExtractor(store, cfg.MaxChainLength)

	return &Engine{
		cfg:       cfg,
		clk:       o.clk,
		store:     store,
		scorer:    scorer,
		extractor: extractor,
		analyzer:  analysis.NewRootCauseAnalyzer(store, extractor, o.clk),
		cascades:  cascade.NewReconstructor(o.clk),
		bus:       notify.NewBus(),
		recent:    recent,
		metrics:   NewMetrics(o.reg),
		logger:    logging.GetLogger("engine"),
	}, nil
}

// AddEvent ingests one subsystem observation: derives the value derivatives
// from the subsystem's cached tail, stores the node, auto-connects it to
// recent predecessors, emits a spike alert on abrupt movement, and finally
// sweeps out nodes past the retention ceiling. Returns a copy of the stored
// node.
func (e *Engine) AddEvent(subsystem string, eventType models.EventType, severity, value float64, description string) models.CausalNode {
	now := e.clk.Now()
	metrics := e.deriveMetrics(subsystem, value)

	node := models.CausalNode{
		ID:          fmt.Sprintf("node-%s", uuid.New().String()),
		Subsystem:   subsystem,
		EventType:   eventType,
		Timestamp:   now,
		Severity:    models.ClampSeverity(severity),
		Description: description,
		Metrics:     metrics,
	}
	e.store.AddNode(node)
	e.metrics.nodesIngested.Inc()

	e.autoConnect(node)

	if math.Abs(metrics.Delta) > SpikeDeltaThreshold || math.Abs(metrics.Delta2) > SpikeDelta2Threshold {
		e.metrics.spikeAlerts.Inc()
		e.bus.PublishSpike(models.SpikeAlert{
			NodeID:    node.ID,
			Subsystem: subsystem,
			Delta:     metrics.Delta,
			Delta2:    metrics.Delta2,
			Timestamp: now,
		})
	}

	e.sweep(now)
	e.updateGauges()
	return node
}

// deriveMetrics computes the first three differences of the subsystem's
// value series from its cached tail, each defaulting to zero when the tail
// is too short, then advances the tail.
func (e *Engine) deriveMetrics(subsystem string, value float64) models.NodeMetrics {
	metrics := models.NodeMetrics{Value: value}
	prev, ok := e.recent.Get(subsystem)
	if ok {
		metrics.Delta = value - prev.metrics.Value
		if prev.depth >= 1 {
			metrics.Delta2 = metrics.Delta - prev.metrics.Delta
		}
		if prev.depth >= 2 {
			metrics.Delta3 = metrics.Delta2 - prev.metrics.Delta2
		}
	}

	depth := 0
	if ok {
		depth = prev.depth + 1
		if depth > 3 {
			depth = 3
		}
	}
	e.recent.Add(subsystem, subsystemHistory{metrics: metrics, depth: depth})
	return metrics
}

// autoConnect scores the newly added node against its most recent in-window
// predecessors and creates an edge for every candidate meeting the
// influence threshold.
func (e *Engine) autoConnect(node models.CausalNode) {
	candidates := e.store.NodesBefore(node.Timestamp, e.cfg.TimeLagWindow, e.cfg.MaxLookbackCandidates)
	for _, candidate := range candidates {
		score := e.scorer.Score(candidate, node)
		if score < e.cfg.MinInfluenceScore {
			continue
		}
		lag := node.Timestamp.Sub(candidate.Timestamp)
		correlation := influence.AutoCorrelationPlaceholder
		edge := models.CausalEdge{
			ID:          fmt.Sprintf("edge-%s", uuid.New().String()),
			FromID:      candidate.ID,
			ToID:        node.ID,
			Influence:   score,
			Level:       models.LevelForInfluence(score),
			TimeLag:     lag,
			Correlation: correlation,
			Confidence:  e.scorer.Confidence(score, correlation, lag),
			Description: fmt.Sprintf("%s -> %s", candidate.Subsystem, node.Subsystem),
		}
		if e.store.AddEdge(edge) {
			e.metrics.edgesCreated.WithLabelValues("auto").Inc()
		}
	}
}

// AddEdge creates a manual edge between two existing nodes. Returns nil if
// either endpoint is missing or the influence is below the configured
// threshold; neither case leaves partial state behind.
func (e *Engine) AddEdge(fromID, toID string, influenceScore, correlation float64, timeLag time.Duration) *models.CausalEdge {
	if _, ok := e.store.Node(fromID); !ok {
		e.logger.Debug("manual edge rejected, missing source %s", fromID)
		return nil
	}
	if _, ok := e.store.Node(toID); !ok {
		e.logger.Debug("manual edge rejected, missing target %s", toID)
		return nil
	}
	score := models.ClampInfluence(influenceScore)
	if score < e.cfg.MinInfluenceScore {
		return nil
	}

	edge := models.CausalEdge{
		ID:          fmt.Sprintf("edge-%s", uuid.New().String()),
		FromID:      fromID,
		ToID:        toID,
		Influence:   score,
		Level:       models.LevelForInfluence(score),
		TimeLag:     timeLag,
		Correlation: correlation,
		Confidence:  e.scorer.Confidence(score, correlation, timeLag),
	}
	if !e.store.AddEdge(edge) {
		return nil
	}
	e.metrics.edgesCreated.WithLabelValues("manual").Inc()
	e.updateGauges()
	copied := edge
	return &copied
}

// AnalyzeRootCause recomputes chains and returns the best current analysis.
// An empty graph returns nil silently; a populated graph with no qualifying
// chain returns nil after emitting an unclear-cause notification. On
// success the result is retained for CurrentRootCause, a root-cause-found
// notification fires, and, when enabled, the winning chain is reconstructed
// as a cascade.
func (e *Engine) AnalyzeRootCause() *models.RootCauseResult {
	if e.store.NodeCount() == 0 {
		e.metrics.analysisRuns.WithLabelValues("empty").Inc()
		return nil
	}

	result := e.analyzer.Analyze()
	if result == nil {
		e.metrics.analysisRuns.WithLabelValues("unclear").Inc()
		e.bus.PublishUnclearCause(models.UnclearCause{
			Reason:    "No causal chains detected",
			Timestamp: e.clk.Now(),
		})
		return nil
	}

	e.metrics.analysisRuns.WithLabelValues("found").Inc()
	e.current = result
	if result.Confidence < e.cfg.MinConfidence {
		e.logger.WarnWithFields("analysis below confidence floor",
			logging.Field("confidence", fmt.Sprintf("%.2f", result.Confidence)),
			logging.Field("floor", fmt.Sprintf("%.2f", e.cfg.MinConfidence)),
		)
	}
	e.bus.PublishRootCause(copyResult(result))

	if e.cfg.CascadeDetection {
		reconstruction := e.cascades.Reconstruct(*result.Chain)
		e.history = append(e.history, reconstruction)
		if overflow := len(e.history) - e.cfg.HistoryLimit; overflow > 0 {
			e.history = e.history[overflow:]
		}
		e.bus.PublishCascade(&reconstruction)
	}
	return copyResult(result)
}

// CurrentRootCause returns the most recent successful analysis, or nil.
func (e *Engine) CurrentRootCause() *models.RootCauseResult {
	if e.current == nil {
		return nil
	}
	return copyResult(e.current)
}

// CascadeReconstructions returns the bounded reconstruction history, oldest
// first.
func (e *Engine) CascadeReconstructions() []models.CascadeReconstruction {
	out := make([]models.CascadeReconstruction, len(e.history))
	copy(out, e.history)
	return out
}

// GraphSummary reports current graph size and chain quality.
func (e *Engine) GraphSummary() models.GraphSummary {
	chains := e.extractor.ExtractChains()
	strongest := 0.0
	for _, chain := range chains {
		if chain.Score > strongest {
			strongest = chain.Score
		}
	}
	return models.GraphSummary{
		NodeCount:           e.store.NodeCount(),
		EdgeCount:           e.store.EdgeCount(),
		ChainCount:          len(chains),
		StrongestChainScore: strongest,
	}
}

// Reset clears all engine state: graph, derivative caches, analysis result,
// and cascade history. Subscriptions survive a reset.
func (e *Engine) Reset() {
	e.store.Reset()
	e.recent.Purge()
	e.history = nil
	e.current = nil
	e.updateGauges()
	e.logger.Info("engine state reset")
}

// SetAffinity swaps the subsystem affinity table used for influence
// scoring. Existing edges keep their scores; only future scoring changes.
func (e *Engine) SetAffinity(table *config.AffinityTable) {
	e.scorer.SetAffinity(table)
}

// SetConfig applies a new configuration to future operations. The graph and
// history are kept; the history is re-capped if the limit shrank.
func (e *Engine) SetConfig(cfg config.Config) {
	e.cfg = cfg.Normalized()
	e.extractor.SetMaxLength(e.cfg.MaxChainLength)
	e.scorer.SetWindow(e.cfg.TimeLagWindow)
	if overflow := len(e.history) - e.cfg.HistoryLimit; overflow > 0 {
		e.history = e.history[overflow:]
	}
}

// OnRootCauseFound registers an observer for successful analyses.
func (e *Engine) OnRootCauseFound(fn notify.RootCauseFunc) notify.Unsubscribe {
	return e.bus.OnRootCauseFound(fn)
}

// OnCascadeReconstructed registers an observer for cascade reconstructions.
func (e *Engine) OnCascadeReconstructed(fn notify.CascadeFunc) notify.Unsubscribe {
	return e.bus.OnCascadeReconstructed(fn)
}

// OnMajorCauseSpike registers an observer for abrupt metric movements.
func (e *Engine) OnMajorCauseSpike(fn notify.SpikeFunc) notify.Unsubscribe {
	return e.bus.OnMajorCauseSpike(fn)
}

// OnUnclearCause registers an observer for inconclusive analyses.
func (e *Engine) OnUnclearCause(fn notify.UnclearCauseFunc) notify.Unsubscribe {
	return e.bus.OnUnclearCause(fn)
}

// sweep evicts nodes older than the retention ceiling plus every edge
// touching them.
func (e *Engine) sweep(now time.Time) {
	cutoff := now.Add(-e.cfg.MaxNodeAge)
	nodes, edges := e.store.RemoveOlderThan(cutoff)
	if nodes > 0 || edges > 0 {
		e.metrics.nodesEvicted.Add(float64(nodes))
		e.metrics.edgesEvicted.Add(float64(edges))
		e.logger.Debug("retention sweep evicted %d nodes, %d edges", nodes, edges)
	}
}

func (e *Engine) updateGauges() {
	e.metrics.graphNodes.Set(float64(e.store.NodeCount()))
	e.metrics.graphEdges.Set(float64(e.store.EdgeCount()))
}

// copyResult returns a result whose slices are detached from engine state,
// so observers and callers cannot corrupt the retained analysis.
func copyResult(result *models.RootCauseResult) *models.RootCauseResult {
	copied := *result
	if result.PrimaryCause != nil {
		primary := *result.PrimaryCause
		copied.PrimaryCause = &primary
	}
	copied.SecondaryCauses = append([]models.CausalNode(nil), result.SecondaryCauses...)
	copied.TertiaryCauses = append([]models.CausalNode(nil), result.TertiaryCauses...)
	copied.HiddenCauses = append([]models.CausalNode(nil), result.HiddenCauses...)
	copied.Evidence = append([]models.EvidenceItem(nil), result.Evidence...)
	copied.Recommendations = append([]string(nil), result.Recommendations...)
	if result.Chain != nil {
		chain := *result.Chain
		chain.Nodes = append([]models.CausalNode(nil), result.Chain.Nodes...)
		chain.Edges = append([]models.CausalEdge(nil), result.Chain.Edges...)
		copied.Chain = &chain
	}
	return &copied
}
