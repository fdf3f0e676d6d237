// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package postgres

import (
	"context"

	"github.com/samber/oops"

	"github.com/icyfeed/icy/internal/auth"
)

// AuditLogRepository implements auth.AuditLogRepository using PostgreSQL.
type AuditLogRepository struct {
	pool poolIface
}

// NewAuditLogRepository creates a new AuditLogRepository.
func NewAuditLogRepository(pool poolIface) *AuditLogRepository {
	return &AuditLogRepository{pool: pool}
}

// Append stores a new entry.
func (r *AuditLogRepository) Append(ctx context.Context, entry *auth.AuditEntry) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO audit_logs (id, username, action, created_at)
		VALUES ($1, $2, $3, $4)
	`, entry.ID.String(), entry.Username, entry.Action, entry.CreatedAt)
	if err != nil {
		return oops.Code("AUDIT_APPEND_FAILED").
			With("operation", "insert audit entry").
			With("username", entry.Username).
			Wrap(err)
	}
	return nil
}

// ListByUsername returns up to limit entries for username, newest first.
func (r *AuditLogRepository) ListByUsername(ctx context.Context, username string, limit int) ([]*auth.AuditEntry, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, username, action, created_at
		FROM audit_logs
		WHERE username = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, username, limit)
	if err != nil {
		return nil, oops.Code("AUDIT_LIST_FAILED").
			With("operation", "query audit entries").
			With("username", username).
			Wrap(err)
	}
	defer rows.Close()

	var entries []*auth.AuditEntry
	for rows.Next() {
		var (
			entry auth.AuditEntry
			idStr string
		)
		if err := rows.Scan(&idStr, &entry.Username, &entry.Action, &entry.CreatedAt); err != nil {
			return nil, oops.Code("AUDIT_LIST_FAILED").
				With("operation", "scan audit entry").
				Wrap(err)
		}
		if entry.ID, err = parseULID(idStr, "audit_id"); err != nil {
			return nil, oops.Code("AUDIT_LIST_FAILED").Wrap(err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("AUDIT_LIST_FAILED").
			With("operation", "iterate audit entries").
			Wrap(err)
	}
	return entries, nil
}
