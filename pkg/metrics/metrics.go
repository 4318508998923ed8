package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pickemup", Name: "identity_resolutions_total", Help: "Number of identity resolutions by event type."},
		[]string{"event"},
	)
	DispatchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pickemup", Name: "dispatch_failures_total", Help: "Number of failed background job enqueues by job type."},
		[]string{"job"},
	)
	RefreshRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pickemup", Name: "profile_refresh_runs_total", Help: "Number of background profile refresh runs by provider and outcome."},
		[]string{"provider", "outcome"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pickemup", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pickemup", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(Resolutions)
	reg.MustRegister(DispatchFailures)
	reg.MustRegister(RefreshRuns)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
