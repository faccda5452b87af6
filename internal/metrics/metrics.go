package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Webhook outcome label values.
const (
	OutcomeOK             = "ok"
	OutcomeUnauthorized   = "unauthorized"
	OutcomeMalformed      = "malformed"
	OutcomePartialFailure = "partial_failure"
	OutcomeError          = "error"
)

var (
	// WebhooksTotal counts inbound compliance webhooks by topic and outcome.
	WebhooksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyglot_compliance_webhooks_total",
			Help: "Inbound compliance webhooks by topic and outcome",
		},
		[]string{"topic", "outcome"},
	)

	// RedactionDeletedRows counts rows removed by redaction, per entity kind.
	RedactionDeletedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyglot_redaction_deleted_rows_total",
			Help: "Rows deleted by redaction, by entity kind",
		},
		[]string{"entity"},
	)

	// RedactionStepFailures counts failed redaction steps, per entity kind.
	RedactionStepFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyglot_redaction_step_failures_total",
			Help: "Redaction steps that failed and need manual remediation",
		},
		[]string{"entity"},
	)

	// HTTPRequestDuration observes request latency by route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "polyglot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	// QueryDuration observes store query latency by operation.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "polyglot_store_query_duration_seconds",
			Help:    "Store query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"op"},
	)

	// ExportsPurged counts expired exports removed by the retention worker.
	ExportsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "polyglot_exports_purged_total",
			Help: "Expired data exports removed by the retention worker",
		},
	)
)
