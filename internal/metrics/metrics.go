package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "authcore"

var (
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Login attempts by outcome.",
	}, []string{"outcome"})

	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_created_total",
		Help:      "Sessions persisted after a successful login.",
	})

	SessionAuditFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_audit_failures_total",
		Help:      "Logins that succeeded although the session record could not be written.",
	})

	SessionsLoggedOut = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_logged_out_total",
		Help:      "Sessions closed, by reason.",
	}, []string{"reason"})

	SessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_expired_total",
		Help:      "Sessions flipped to expired by sweeps or lazy checks.",
	})
)

const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid_credentials"
	OutcomeDeactivated = "account_deactivated"

	ReasonLogout    = "logout"
	ReasonLogoutAll = "logout_all"
	ReasonTerminate = "terminate"
	ReasonUserGone  = "user_deleted"
)
