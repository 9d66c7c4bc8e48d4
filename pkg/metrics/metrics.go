package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PermissionChecks counts permission evaluations by resource, action and outcome (allowed|denied|error).
	PermissionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetcn_permission_checks_total",
			Help: "Total number of permission checks",
		},
		[]string{"resource", "action", "result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleetcn_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// ExpiryNotices counts expiry notifications emitted by the maintenance scanner, by document kind.
	ExpiryNotices = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetcn_expiry_notices_total",
			Help: "Total number of document expiry notifications emitted",
		},
		[]string{"kind"},
	)

	// NotificationSubscribers tracks connected notification stream clients.
	NotificationSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleetcn_notification_subscribers",
			Help: "Number of connected notification stream clients",
		},
	)
)
