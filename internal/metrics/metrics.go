// Package metrics declares the Prometheus instruments of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Authentication metrics
var (
	// AuthDecisionsTotal tracks middleware outcomes: authenticated, rejected, forbidden
	AuthDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_decisions_total",
			Help: "Authentication middleware decisions by outcome",
		},
		[]string{"outcome"},
	)

	// LoginAttemptsTotal tracks login attempts by result
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Login attempts by result (success, bad_credentials, throttled, inactive)",
		},
		[]string{"result"},
	)

	// TokenRefreshTotal tracks refresh-token rotations by result
	TokenRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_refresh_total",
			Help: "Refresh token rotations by result (success, invalid, reuse_detected)",
		},
		[]string{"result"},
	)
)

// Database metrics
var (
	// DBQueriesTotal tracks database queries by statement name and status
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_queries_total",
			Help: "Total database queries by statement and status",
		},
		[]string{"query", "status"},
	)

	// DBQueryDuration tracks query latency in seconds
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"query"},
	)
)

// Document metrics
var (
	// DocumentUploadsTotal tracks uploaded documents
	DocumentUploadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "document_uploads_total",
			Help: "Total uploaded documents",
		},
	)

	// DocumentUploadBytes tracks uploaded document sizes
	DocumentUploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "document_upload_bytes",
			Help:    "Uploaded document size in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)
)
