// Package metrics defines and registers the custom Prometheus metrics for
// the ProjectForge API. It is the single source of truth for metric names,
// labels, and help strings.
//
// All metrics are registered with the default registry at package init via
// promauto, and exposed by the /metrics route.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "projectforge"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "locked" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "email_taken", "invalid" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// PasswordHashDuration measures bcrypt hash and compare calls.
// Label:
//   - op: "hash" or "compare"
var PasswordHashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of password hashing operations.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1},
	},
	[]string{"op"},
)

// ── Authorization metrics ─────────────────────────────────────────────────────

// AuthorizationDecisionsTotal counts evaluator outcomes.
// Labels:
//   - decision: "allow" or "deny"
//   - role: the principal's role
var AuthorizationDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_decisions_total",
		Help:      "Total number of ownership authorization decisions.",
	},
	[]string{"decision", "role"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEntriesTotal counts audit entries handled by the dispatcher.
// Label:
//   - result: "stored", "failed" or "dropped"
var AuditEntriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_entries_total",
		Help:      "Total number of audit entries, by outcome.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks entries waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit entries pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditObserver feeds dispatcher outcomes into AuditEntriesTotal and
// AuditQueueDepth.
type AuditObserver struct{}

func (AuditObserver) EntryStored()  { AuditEntriesTotal.WithLabelValues("stored").Inc() }
func (AuditObserver) EntryFailed()  { AuditEntriesTotal.WithLabelValues("failed").Inc() }
func (AuditObserver) EntryDropped() { AuditEntriesTotal.WithLabelValues("dropped").Inc() }

func (AuditObserver) QueueDepth(worker, depth int) {
	AuditQueueDepth.WithLabelValues(strconv.Itoa(worker)).Set(float64(depth))
}
