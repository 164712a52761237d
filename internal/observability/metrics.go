// Package observability provides application metrics and distributed tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hushwall_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hushwall_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// PermissionDenials counts refused operations by resource and action.
	PermissionDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hushwall_permission_denials_total",
		Help: "Total number of operations refused by the permission engine",
	}, []string{"resource", "action"})

	// RateLimitRejections counts creations refused by the posting throttles.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hushwall_rate_limit_rejections_total",
		Help: "Total number of creations refused by rate limits",
	}, []string{"kind"})

	// ModerationVotes counts removal votes cast on reports.
	ModerationVotes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hushwall_moderation_votes_total",
		Help: "Total number of removal votes cast on reports",
	})

	// ModerationRemovals counts targets removed by reaching the vote threshold.
	ModerationRemovals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hushwall_moderation_removals_total",
		Help: "Total number of reported targets removed by community vote",
	}, []string{"target"})

	// CleanupRemovals counts rows removed by the retention job.
	CleanupRemovals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hushwall_cleanup_removals_total",
		Help: "Total number of rows removed by the cleanup job",
	}, []string{"kind"})
)
