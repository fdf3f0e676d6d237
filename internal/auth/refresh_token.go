// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// RefreshTokenExpiry is the lifetime of a refresh token, restarted on every login.
const RefreshTokenExpiry = 14 * 24 * time.Hour

// RefreshToken is the single long-lived credential a user holds.
// Only the SHA-256 hash of the token value is stored.
type RefreshToken struct {
	ID        ulid.ULID
	UserID    ulid.ULID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRefreshToken creates a refresh token for userID and returns it with
// the plaintext value to hand to the client.
func NewRefreshToken(userID ulid.ULID, now time.Time) (*RefreshToken, string, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, "", oops.Code("REFRESH_TOKEN_INVALID_USER").Errorf("user ID cannot be zero")
	}

	value, err := generateRefreshValue()
	if err != nil {
		return nil, "", err
	}

	return &RefreshToken{
		ID:        ulid.Make(),
		UserID:    userID,
		TokenHash: HashRefreshToken(value),
		ExpiresAt: now.Add(RefreshTokenExpiry),
		CreatedAt: now,
		UpdatedAt: now,
	}, value, nil
}

// Rotate replaces the token value and restarts the expiry window.
// It returns the new plaintext value.
func (t *RefreshToken) Rotate(now time.Time) (string, error) {
	value, err := generateRefreshValue()
	if err != nil {
		return "", err
	}
	t.TokenHash = HashRefreshToken(value)
	t.ExpiresAt = now.Add(RefreshTokenExpiry)
	t.UpdatedAt = now
	return value, nil
}

// IsExpiredAt reports whether the token is expired at now.
func (t *RefreshToken) IsExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// HashRefreshToken computes the SHA-256 hash stored for a token value.
func HashRefreshToken(value string) string {
	h := sha256.Sum256([]byte(value))
	return hex.EncodeToString(h[:])
}

func generateRefreshValue() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", oops.Code("REFRESH_TOKEN_GENERATE_FAILED").
			With("operation", "uuid.NewRandom").
			Wrap(err)
	}
	return id.String(), nil
}

// RefreshTokenRepository manages refresh token persistence. A user holds at
// most one token.
type RefreshTokenRepository interface {
	// GetByUser retrieves the token held by userID. Returns ErrNotFound if absent.
	GetByUser(ctx context.Context, userID ulid.ULID) (*RefreshToken, error)

	// GetByTokenHash retrieves a token by its hash. Returns ErrNotFound if absent.
	GetByTokenHash(ctx context.Context, tokenHash string) (*RefreshToken, error)

	// Save inserts the token, or replaces the user's existing token.
	Save(ctx context.Context, token *RefreshToken) error
}
