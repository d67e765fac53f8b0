// Package metrics defines and registers all custom Prometheus metrics for the
// identity service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry via promauto at
// package load time; the /metrics route exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "bad_credentials", "locked", "disabled",
//     "credentials_expired", "not_found", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by outcome.",
	},
	[]string{"result"},
)

// LockoutsTotal counts accounts locked after repeated failed logins.
var LockoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lockouts_total",
		Help:      "Total number of accounts locked by the failed-attempt threshold.",
	},
)

// TokenRefreshesTotal counts access tokens minted through the refresh flow.
var TokenRefreshesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total number of access tokens minted from refresh tokens.",
	},
)

// LogoutsTotal counts successful logouts (tokens blacklisted).
var LogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of access tokens revoked at logout.",
	},
)

// ── Blacklist metrics ─────────────────────────────────────────────────────────

// BlacklistEvictionsTotal counts not-yet-expired entries evicted under
// capacity pressure.
var BlacklistEvictionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blacklist_evictions_total",
		Help:      "Total number of blacklist entries evicted before their natural expiry.",
	},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsDroppedTotal counts notifications dropped because a worker
// queue was full.
var NotificationsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dropped_total",
		Help:      "Total number of notifications dropped due to full worker queues.",
	},
)

// NotificationsFailedTotal counts notifications whose delivery failed.
// Label:
//   - template: the notification template key (e.g. "account.locked")
var NotificationsFailedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_failed_total",
		Help:      "Total number of notification deliveries that failed, by template.",
	},
	[]string{"template"},
)
