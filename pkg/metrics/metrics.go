package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medifix_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// PermissionChecks counts permission evaluations and their outcome (allowed|denied|error).
	PermissionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medifix_permission_checks_total",
			Help: "Total number of permission checks",
		},
		[]string{"permission", "result"},
	)

	// WorkflowTransitions counts work-order transition attempts by action and outcome
	// (success|invalid|denied|stale|error).
	WorkflowTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medifix_workflow_transitions_total",
			Help: "Total number of work order workflow transition attempts",
		},
		[]string{"action", "outcome"},
	)

	// WorkOrdersAutoClosed counts work orders closed by the retention job.
	WorkOrdersAutoClosed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "medifix_work_orders_auto_closed_total",
			Help: "Total number of work orders auto-closed after the closure window",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medifix_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
