// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

// Package metrics holds the Prometheus collectors for vendor traffic, sync
// runs and SIBIL declarations. The `watch` command serves them on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Vendor HTTP traffic
	TicketingRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_requests_total",
			Help: "Total number of HTTP requests sent to ticketing vendors",
		},
		[]string{"vendor", "status"}, // status: HTTP code or "transport_error"
	)

	TicketingRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ticketing_request_duration_seconds",
			Help:    "Duration of HTTP requests to ticketing vendors",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"vendor"},
	)

	TicketingPagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_pages_fetched_total",
			Help: "Total number of list pages fetched from ticketing vendors",
		},
		[]string{"vendor"},
	)

	TicketingErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_errors_total",
			Help: "Total number of failed connector operations by error kind",
		},
		[]string{"vendor", "kind"},
	)

	TicketingRateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_rate_limited_total",
			Help: "Total number of 429 answers received from ticketing vendors",
		},
		[]string{"vendor"},
	)

	TicketingTokenRefresh = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_token_refresh_total",
			Help: "Total number of vendor logins and token refreshes",
		},
		[]string{"vendor", "result"}, // result: "success", "failure"
	)

	// Fetch and sync runs
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ticketing_fetch_duration_seconds",
			Help:    "Duration of a full GetEventsSeries call, all pages included",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"vendor"},
	)

	FetchEvents = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ticketing_fetch_events",
			Help: "Number of events returned by the last successful fetch of a connection",
		},
		[]string{"connection"},
	)

	SyncChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_sync_changes_total",
			Help: "Total number of event changes detected between snapshots",
		},
		[]string{"connection", "type"}, // type: "added", "removed", "updated"
	)

	SyncLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ticketing_sync_last_success_timestamp",
			Help: "Unix timestamp of the last successful sync of a connection",
		},
		[]string{"connection"},
	)

	// Declarations
	SibilDeclarations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sibil_declarations_total",
			Help: "Total number of SIBIL declaration submissions",
		},
		[]string{"result"}, // result: "accepted", "rejected", "error"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordVendorRequest records one HTTP exchange with a vendor. A zero status
// means the request never got an answer.
func RecordVendorRequest(vendor string, status int, duration time.Duration) {
	label := "transport_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	TicketingRequestsTotal.WithLabelValues(vendor, label).Inc()
	TicketingRequestDuration.WithLabelValues(vendor).Observe(duration.Seconds())
}

// RecordPage counts a fetched list page.
func RecordPage(vendor string) {
	TicketingPagesFetched.WithLabelValues(vendor).Inc()
}

// RecordRateLimited counts a 429 answer.
func RecordRateLimited(vendor string) {
	TicketingRateLimited.WithLabelValues(vendor).Inc()
}

// RecordTokenRefresh counts a login attempt.
func RecordTokenRefresh(vendor string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	TicketingTokenRefresh.WithLabelValues(vendor, result).Inc()
}

// RecordConnectorError counts a failed operation by kind.
func RecordConnectorError(vendor, kind string) {
	TicketingErrors.WithLabelValues(vendor, kind).Inc()
}

// RecordFetch records a complete GetEventsSeries call.
func RecordFetch(vendor, connection string, duration time.Duration, events int, err error) {
	FetchDuration.WithLabelValues(vendor).Observe(duration.Seconds())
	if err == nil {
		FetchEvents.WithLabelValues(connection).Set(float64(events))
	}
}

// RecordSync records the outcome of a sync run for a connection.
func RecordSync(connection string, added, removed, updated int) {
	SyncChanges.WithLabelValues(connection, "added").Add(float64(added))
	SyncChanges.WithLabelValues(connection, "removed").Add(float64(removed))
	SyncChanges.WithLabelValues(connection, "updated").Add(float64(updated))
	SyncLastSuccess.WithLabelValues(connection).Set(float64(time.Now().Unix()))
}

// RecordDeclaration counts a SIBIL submission by result.
func RecordDeclaration(result string) {
	SibilDeclarations.WithLabelValues(result).Inc()
}
