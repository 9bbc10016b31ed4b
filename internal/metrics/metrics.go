// Package metrics defines and registers all custom Prometheus metrics for the
// dashboard API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dashboard"

// ── Authentication metrics ───────────────────────────────────────────────────

// AuthAttemptsTotal counts completed authentication flows.
// Labels:
//   - action: "login", "refresh", "verify", "register", "password_update"
//   - provider: "local", "google", "facebook" or "github"
//   - outcome: "success" or the error kind ("validation", "authentication", "provider", "internal")
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication flows, by action, provider and outcome.",
	},
	[]string{"action", "provider", "outcome"},
)

// UsersProvisionedTotal counts local accounts created on a first external login.
var UsersProvisionedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_provisioned_total",
		Help:      "Total number of local users auto-provisioned from an external identity.",
	},
	[]string{"provider"},
)

// ProviderRequestDuration measures round-trips to external identity providers.
// Labels:
//   - provider: "google", "facebook" or "github"
//   - operation: "profile" or "exchange"
//   - result: "ok" or "error"
var ProviderRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_request_duration_seconds",
		Help:      "Duration of calls to external identity providers.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"provider", "operation", "result"},
)

// ── Audit trail metrics ──────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of auth events waiting in each worker channel.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of auth events pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)

// AuditEventsDroppedTotal counts events discarded because a worker channel was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of auth events dropped because the audit queue was full.",
	},
)
