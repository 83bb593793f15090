package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's instrumentation. Registration happens against
// an injected Registerer so embedding applications keep control of their
// metric namespace and tests can use a throwaway registry.
type Metrics struct {
	nodesIngested prometheus.Counter
	edgesCreated  *prometheus.CounterVec
	nodesEvicted  prometheus.Counter
	edgesEvicted  prometheus.Counter
	spikeAlerts   prometheus.Counter
	analysisRuns  *prometheus.CounterVec
	graphNodes    prometheus.Gauge
	graphEdges    prometheus.Gauge
}

// NewMetrics creates and registers the engine metrics. A nil registerer
// yields working but unregistered collectors, which is what tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		nodesIngested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "causegraph",
			Name:      "nodes_ingested_total",
			Help:      "Events ingested into the causal graph.",
		}),
		edgesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "causegraph",
			Name:      "edges_created_total",
			Help:      "Edges created, by origin.",
		}, []string{"origin"}),
		nodesEvicted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "causegraph",
			Name:      "nodes_evicted_total",
			Help:      "Nodes removed by the retention sweep.",
		}),
		edgesEvicted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "causegraph",
			Name:      "edges_evicted_total",
			Help:      "Edges removed by the retention sweep.",
		}),
		spikeAlerts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "causegraph",
			Name:      "spike_alerts_total",
			Help:      "Major-cause-spike notifications emitted.",
		}),
		analysisRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "causegraph",
			Name:      "analysis_runs_total",
			Help:      "Root cause analysis invocations, by outcome.",
		}, []string{"outcome"}),
		graphNodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "causegraph",
			Name:      "graph_nodes",
			Help:      "Nodes currently retained in the graph.",
		}),
		graphEdges: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "causegraph",
			Name:      "graph_edges",
			Help:      "Edges currently retained in the graph.",
		}),
	}
}
