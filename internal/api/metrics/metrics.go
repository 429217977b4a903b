// Package metrics defines and registers the custom Prometheus metrics of the
// accounts API. HTTP request metrics come from echoprometheus; this package
// only holds the authentication-specific counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "throttled" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenVerificationsTotal counts bearer token resolutions done by the auth
// middleware.
// Label:
//   - result: "valid", "invalid" or "anonymous"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of bearer token resolutions, by result.",
	},
	[]string{"result"},
)

// AccessDeniedTotal counts policy denials.
// Label:
//   - policy: "active", "admin" or "collaborator"
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of requests denied by an access policy.",
	},
	[]string{"policy"},
)

// UsersRegisteredTotal counts successful registrations.
// Label:
//   - role: the role assigned at creation
var UsersRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of accounts registered, by role.",
	},
	[]string{"role"},
)
