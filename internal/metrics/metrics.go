// Package metrics defines the prometheus/client_golang collectors AnyVar
// exposes: batch writer depth and state, async run counts by status, and
// translation outcomes. Collectors self-register against the default
// registry via promauto, the way umh-core/pkg/metrics registers its FSM
// gauges; cmd/anyvar serves them at /metrics with promhttp.Handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BatchQueueDepth reports the number of batches currently buffered
	// in a BatchContext's pending-batches channel, sampled on send.
	BatchQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "anyvar",
		Subsystem: "batch",
		Name:      "queue_depth",
		Help:      "Number of batches buffered in the pending-batches channel.",
	})

	// WriterState reports the background batch writer's state machine
	// position: 0=Idle, 1=Draining, 2=Failed.
	WriterState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "anyvar",
		Subsystem: "batch",
		Name:      "writer_state",
		Help:      "Background batch writer state (0=Idle, 1=Draining, 2=Failed).",
	})

	// RunsTotal counts async VCF runs by terminal status.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "anyvar",
		Subsystem: "async",
		Name:      "runs_total",
		Help:      "Total async VCF ingest runs by status.",
	}, []string{"status"})

	// TranslationErrorsTotal counts per-allele translation failures
	// encountered during VCF ingest, keyed by the anyvarerr sentinel
	// the failure matched.
	TranslationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "anyvar",
		Subsystem: "translate",
		Name:      "errors_total",
		Help:      "Total per-allele translation failures during VCF ingest, by error kind.",
	}, []string{"kind"})
)
