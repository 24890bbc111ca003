package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "importgraph_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "importgraph_graph_nodes_total",
		Help: "Total number of nodes in the module dependency graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "importgraph_graph_edges_total",
		Help: "Total number of edges in the module dependency graph.",
	})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "importgraph_analysis_seconds",
		Help:    "Time spent on high-level analysis tasks.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	WarningsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "importgraph_warnings_total",
		Help: "Total number of distinct diagnostics emitted.",
	})

	ResolverProbesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "importgraph_resolver_probes_total",
		Help: "Total number of filesystem probes performed during module resolution.",
	})

	ResolverCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "importgraph_resolver_cache_hits_total",
		Help: "Total number of module resolutions answered from the memo cache.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "importgraph_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
