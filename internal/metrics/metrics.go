// Package metrics defines and registers the custom Prometheus metrics of the
// parcel portal. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on import
// (promauto), so /metrics exposes them as soon as the router is built.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "parcel_portal"

// ── Parcel request metrics ────────────────────────────────────────────────────

// ParcelRequestsTotal counts submit decisions taken by the request service.
// Label:
//   - result: "accepted", "rejected_invalid", "rejected_duplicate" or "error"
var ParcelRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parcel_requests_total",
		Help:      "Total number of parcel request submissions, by result.",
	},
	[]string{"result"},
)

// ParcelRequestSubmitDuration measures one submit from validation to persistence.
var ParcelRequestSubmitDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "parcel_request_submit_duration_seconds",
		Help:      "Duration of parcel request submission.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Sign-in metrics ───────────────────────────────────────────────────────────

// SignInAttemptsTotal counts sign-in attempts.
// Label:
//   - outcome: "success" or the failure kind (e.g. "invalid_credential", "email_not_verified")
var SignInAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signin_attempts_total",
		Help:      "Total number of sign-in attempts, by outcome.",
	},
	[]string{"outcome"},
)

// ── Verification e-mail metrics ───────────────────────────────────────────────

// VerificationEmailsTotal counts verification e-mails.
// Label:
//   - result: "queued", "queue_full", "sent" or "send_failed"
var VerificationEmailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verification_emails_total",
		Help:      "Total number of verification e-mails, by result.",
	},
	[]string{"result"},
)

// OutboxQueueDepth tracks the number of e-mails waiting in each outbox worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var OutboxQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "outbox_queue_depth",
		Help:      "Current number of e-mails pending in each outbox worker channel.",
	},
	[]string{"worker_id"},
)

// ActiveSessions is the number of browser sessions holding controllers.
var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Number of browser sessions currently held in memory.",
	},
)
