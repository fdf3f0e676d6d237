// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package auth

// Login results reported to Metrics.
const (
	LoginSucceeded          = "success"
	LoginUserNotFound       = "not_found"
	LoginInvalidCredentials = "invalid_credentials"
	LoginError              = "error"
)

// Metrics receives domain events for instrumentation.
type Metrics interface {
	LoginAttempted(result string)
	Withdrawn(outcome WithdrawOutcome)
	AuditWriteFailed(action string)
}

// NopMetrics discards all events.
type NopMetrics struct{}

// LoginAttempted implements Metrics.
func (NopMetrics) LoginAttempted(string) {}

// Withdrawn implements Metrics.
func (NopMetrics) Withdrawn(WithdrawOutcome) {}

// AuditWriteFailed implements Metrics.
func (NopMetrics) AuditWriteFailed(string) {}
