// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/icyfeed/icy/internal/auth"
)

// Metrics holds the icy_* collectors. It implements auth.Metrics.
type Metrics struct {
	LoginsTotal         *prometheus.CounterVec
	WithdrawalsTotal    *prometheus.CounterVec
	AuditWriteFailures  *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var _ auth.Metrics = (*Metrics)(nil)

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "icy_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		WithdrawalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "icy_withdrawals_total",
				Help: "Withdrawal attempts by outcome",
			},
			[]string{"outcome"},
		),
		AuditWriteFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "icy_audit_write_failures_total",
				Help: "Audit entries that could not be stored, by action",
			},
			[]string{"action"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "icy_http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "icy_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	reg.MustRegister(
		m.LoginsTotal,
		m.WithdrawalsTotal,
		m.AuditWriteFailures,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// LoginAttempted implements auth.Metrics.
func (m *Metrics) LoginAttempted(result string) {
	m.LoginsTotal.WithLabelValues(result).Inc()
}

// Withdrawn implements auth.Metrics.
func (m *Metrics) Withdrawn(outcome auth.WithdrawOutcome) {
	m.WithdrawalsTotal.WithLabelValues(outcome.String()).Inc()
}

// AuditWriteFailed implements auth.Metrics.
func (m *Metrics) AuditWriteFailed(action string) {
	m.AuditWriteFailures.WithLabelValues(action).Inc()
}

// ObserveRequest records one served HTTP request. route is the matched
// route pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
