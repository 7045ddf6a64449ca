package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProbesTotal counts stream probes by outcome
	ProbesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "streampulse",
		Name:      "probes_total",
		Help:      "Total number of stream probes by status.",
	}, []string{"status"})

	// ProbeDuration observes end-to-end probe latency
	ProbeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "streampulse",
		Name:      "probe_duration_seconds",
		Help:      "Stream probe duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	// ChannelsReconciled counts reconciler decisions per ingest run
	ChannelsReconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "streampulse",
		Name:      "channels_reconciled_total",
		Help:      "Total channel reconciliation decisions by action.",
	}, []string{"action"})

	// IngestRuns counts ingestion runs by outcome
	IngestRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "streampulse",
		Name:      "ingest_runs_total",
		Help:      "Total playlist ingestion runs by outcome.",
	}, []string{"outcome"})

	// ParseErrors counts malformed playlist entries by error type
	ParseErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "streampulse",
		Name:      "parse_errors_total",
		Help:      "Total malformed playlist entries skipped during parsing.",
	}, []string{"type"})

	// CatalogChannels tracks the current catalog size by status
	CatalogChannels = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "streampulse",
		Name:      "catalog_channels",
		Help:      "Current number of channels in the catalog by status.",
	}, []string{"status"})
)
