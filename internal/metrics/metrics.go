// Package metrics defines and registers the custom Prometheus metrics of the
// catalog API. Metrics register with the default registry on package load
// through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalog"

// ── Identity metrics ──────────────────────────────────────────────────────────

// AuthAttemptsTotal counts registration and login outcomes.
// Labels:
//   - operation: "register" or "login"
//   - result: "success", "failure", "conflict", or "throttled"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of registration and login attempts, by outcome.",
	},
	[]string{"operation", "result"},
)

// TokensRejectedTotal counts requests turned away by the authorization gate.
// Label:
//   - reason: "missing_header", "malformed_header", "invalid", "expired", "unknown_user"
var TokensRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_rejected_total",
		Help:      "Total number of requests rejected by the authorization gate.",
	},
	[]string{"reason"},
)

// AuditQueueDepth tracks the number of audit events waiting per worker.
// Label:
//   - worker_id: numeric worker index
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditDroppedTotal counts audit events discarded because a shard was full.
var AuditDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_dropped_total",
		Help:      "Total number of audit events dropped on a full worker channel.",
	},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// ProductWritesTotal counts catalog mutations.
// Label:
//   - operation: "create", "update", or "delete"
var ProductWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_writes_total",
		Help:      "Total number of catalog writes, by operation.",
	},
	[]string{"operation"},
)
