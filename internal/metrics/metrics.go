// Package metrics exposes the gateway's prometheus metrics. Guard outcomes
// are the interesting ones: how tenants get resolved, how often the guard
// redirects, and which upstream fetches fail.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP surface metrics.
var (
	// APIRequestsTotal counts gateway requests by method, route, status.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admingate_api_requests_total",
			Help: "Total HTTP requests handled by the gateway",
		},
		[]string{"method", "path", "status"},
	)

	// APIRequestDuration tracks request latency in seconds.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "admingate_api_request_duration_seconds",
			Help:    "HTTP request latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Guard pipeline metrics.
var (
	// TenantResolutionsTotal counts tenant resolutions by source
	// (url, saved-preference, first-available, none).
	TenantResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admingate_tenant_resolutions_total",
			Help: "Tenant resolutions by source",
		},
		[]string{"source"},
	)

	// GuardRedirectsTotal counts recovery redirects by reason
	// (invalid_route, no_tenant, unauthenticated).
	GuardRedirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admingate_guard_redirects_total",
			Help: "Guard-issued redirects by reason",
		},
		[]string{"reason"},
	)

	// GuardStatesTotal counts the terminal guard state of each evaluation.
	GuardStatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admingate_guard_states_total",
			Help: "Guard evaluations by resulting state",
		},
		[]string{"state"},
	)

	// DirectoryFetchFailuresTotal counts failed available-tenants fetches.
	DirectoryFetchFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "admingate_directory_fetch_failures_total",
			Help: "Failed tenant directory fetches",
		},
	)

	// PermissionFetchFailuresTotal counts failed my-permissions fetches.
	PermissionFetchFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "admingate_permission_fetch_failures_total",
			Help: "Failed permission fetches",
		},
	)

	// TenantSwitchesTotal counts explicit tenant switches.
	TenantSwitchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "admingate_tenant_switches_total",
			Help: "Explicit tenant switches",
		},
	)
)
