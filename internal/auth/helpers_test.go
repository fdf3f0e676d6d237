// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/icyfeed/icy/internal/auth"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// cookieJar records cookies in emission order.
type cookieJar struct {
	cookies []auth.Cookie
}

func (j *cookieJar) SetCookie(c auth.Cookie) {
	j.cookies = append(j.cookies, c)
}

func (j *cookieJar) get(name string) (auth.Cookie, bool) {
	for i := len(j.cookies) - 1; i >= 0; i-- {
		if j.cookies[i].Name == name {
			return j.cookies[i], true
		}
	}
	return auth.Cookie{}, false
}

// memRefreshTokens is an in-memory RefreshTokenRepository keyed by user.
type memRefreshTokens struct {
	mu     sync.Mutex
	byUser map[ulid.ULID]auth.RefreshToken
}

func newMemRefreshTokens() *memRefreshTokens {
	return &memRefreshTokens{byUser: make(map[ulid.ULID]auth.RefreshToken)}
}

func (m *memRefreshTokens) GetByUser(_ context.Context, userID ulid.ULID) (*auth.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byUser[userID]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &t, nil
}

func (m *memRefreshTokens) GetByTokenHash(_ context.Context, tokenHash string) (*auth.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.byUser {
		if t.TokenHash == tokenHash {
			return &t, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (m *memRefreshTokens) Save(_ context.Context, token *auth.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byUser[token.UserID]; ok {
		token.ID = existing.ID
		token.CreatedAt = existing.CreatedAt
	}
	m.byUser[token.UserID] = *token
	return nil
}

func (m *memRefreshTokens) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byUser)
}

// memAuditLog is an in-memory AuditLogRepository.
type memAuditLog struct {
	mu      sync.Mutex
	entries []*auth.AuditEntry
}

func (m *memAuditLog) Append(_ context.Context, entry *auth.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memAuditLog) ListByUsername(_ context.Context, username string, limit int) ([]*auth.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*auth.AuditEntry
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if m.entries[i].Username == username {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

func (m *memAuditLog) actions(username string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.entries {
		if e.Username == username {
			out = append(out, e.Action)
		}
	}
	return out
}

func newAuditLog(t *testing.T, repo auth.AuditLogRepository) *auth.AuditLog {
	t.Helper()
	audit, err := auth.NewAuditLog(repo, nil)
	require.NoError(t, err)
	return audit
}

func activeUser(username string) *auth.User {
	return &auth.User{
		ID:           ulid.Make(),
		Username:     username,
		Nickname:     "nick",
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$salt$hash",
		Email:        username + "@example.com",
		Status:       auth.StatusInAction,
		CreatedAt:    fixedNow,
		UpdatedAt:    fixedNow,
	}
}

func withdrawnUser(username string) *auth.User {
	u := activeUser(username)
	u.Status = auth.StatusSecession
	return u
}

func ptr[T any](v T) *T { return &v }
