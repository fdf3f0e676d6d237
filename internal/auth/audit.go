// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/icyfeed/icy/pkg/errutil"
)

// Audit actions, stored verbatim.
const (
	ActionLogin    = "로그인"
	ActionLogout   = "로그아웃"
	ActionWithdraw = "탈퇴"
)

// Audit listing bounds.
const (
	DefaultAuditListLimit = 20
	MaxAuditListLimit     = 100
)

// AuditEntry is an append-only record of an account event.
type AuditEntry struct {
	ID        ulid.ULID `json:"id"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditLogRepository persists audit entries.
type AuditLogRepository interface {
	// Append stores a new entry.
	Append(ctx context.Context, entry *AuditEntry) error

	// ListByUsername returns the newest entries for username, newest first.
	ListByUsername(ctx context.Context, username string, limit int) ([]*AuditEntry, error)
}

// AuditLog records account events. Recording is best effort: failures are
// logged and counted but never returned to the caller.
type AuditLog struct {
	repo    AuditLogRepository
	logger  *slog.Logger
	metrics Metrics
	now     func() time.Time
}

// NewAuditLog creates an AuditLog that logs through slog.Default.
func NewAuditLog(repo AuditLogRepository, metrics Metrics) (*AuditLog, error) {
	return NewAuditLogWithLogger(repo, metrics, slog.Default())
}

// NewAuditLogWithLogger creates an AuditLog with an explicit logger.
func NewAuditLogWithLogger(repo AuditLogRepository, metrics Metrics, logger *slog.Logger) (*AuditLog, error) {
	if repo == nil {
		return nil, oops.Errorf("audit log repository is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &AuditLog{repo: repo, logger: logger, metrics: metrics, now: time.Now}, nil
}

// Record appends an entry for username. The write is detached from ctx
// cancellation so a dropped client does not lose the entry.
func (a *AuditLog) Record(ctx context.Context, username, action string) {
	entry := &AuditEntry{
		ID:        ulid.Make(),
		Username:  username,
		Action:    action,
		CreatedAt: a.now(),
	}

	if err := a.repo.Append(context.WithoutCancel(ctx), entry); err != nil {
		a.metrics.AuditWriteFailed(action)
		errutil.LogErrorContext(ctx, a.logger, "audit log write failed",
			oops.With("username", username).With("action", action).Wrap(err))
	}
}

// List returns the newest entries for username. A non-positive limit uses
// DefaultAuditListLimit; larger limits are capped at MaxAuditListLimit.
func (a *AuditLog) List(ctx context.Context, username string, limit int) ([]*AuditEntry, error) {
	switch {
	case limit <= 0:
		limit = DefaultAuditListLimit
	case limit > MaxAuditListLimit:
		limit = MaxAuditListLimit
	}

	entries, err := a.repo.ListByUsername(ctx, username, limit)
	if err != nil {
		return nil, oops.Code("AUDIT_LIST_FAILED").
			With("username", username).
			Wrap(err)
	}
	return entries, nil
}
