// Package metrics exposes the process's Prometheus collectors. They are
// registered on the default registry, which the /metrics route serves.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "affiliate_notify"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	IntentsParsedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intents_parsed_total",
			Help:      "Parsed shopping requests by source and whether a category was found.",
		},
		[]string{"source", "categorized"},
	)

	MatchesClaimedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_claimed_total",
			Help:      "Product matches recorded against requests, by trigger.",
		},
		[]string{"trigger"},
	)

	MatchConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_version_conflicts_total",
			Help:      "Optimistic version conflicts hit while persisting request state.",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Match notification attempts by driver and outcome.",
		},
		[]string{"driver", "outcome"},
	)

	OutboxJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_jobs_total",
			Help:      "Outbox jobs processed by the dispatcher, by outcome.",
		},
		[]string{"outcome"},
	)

	FreshnessTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_freshness_transitions_total",
			Help:      "Products moved to a new freshness state by the sweeper.",
		},
		[]string{"to"},
	)

	RequestsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_expired_total",
			Help:      "Active requests closed because their deadline passed.",
		},
	)
)

const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
	OutcomeRetried   = "retried"
	OutcomeDead      = "dead"

	TriggerRequest = "request"
	TriggerProduct = "product"
)
