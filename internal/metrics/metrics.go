// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route pattern, and status code.",
		}, []string{"method", "route", "code"})

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"})

	ActivityEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_entries_total",
			Help: "Activity-log entries appended, by entry type.",
		}, []string{"type"})

	AuthFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Rejected authentication attempts, by reason.",
		}, []string{"reason"})

	PageVisitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_visits_total",
			Help: "Tracked page visits, by outcome (stored or bot).",
		}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ActivityEntriesTotal,
		AuthFailuresTotal,
		PageVisitsTotal,
	)
}
