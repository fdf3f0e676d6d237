// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/icyfeed/icy/internal/auth"
)

const refreshColumns = `id, user_id, token_hash, expires_at, created_at, updated_at`

// RefreshTokenRepository implements auth.RefreshTokenRepository using PostgreSQL.
type RefreshTokenRepository struct {
	pool poolIface
}

// NewRefreshTokenRepository creates a new RefreshTokenRepository.
func NewRefreshTokenRepository(pool poolIface) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: pool}
}

// GetByUser retrieves the token held by userID.
func (r *RefreshTokenRepository) GetByUser(ctx context.Context, userID ulid.ULID) (*auth.RefreshToken, error) {
	row := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+refreshColumns+` FROM refresh_tokens WHERE user_id = $1`, userID.String())

	token, err := scanRefreshToken(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("REFRESH_TOKEN_NOT_FOUND").
			With("user_id", userID.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("REFRESH_TOKEN_GET_FAILED").
			With("operation", "get refresh token by user").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return token, nil
}

// GetByTokenHash retrieves a token by the hash of its value.
func (r *RefreshTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.RefreshToken, error) {
	row := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+refreshColumns+` FROM refresh_tokens WHERE token_hash = $1`, tokenHash)

	token, err := scanRefreshToken(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("REFRESH_TOKEN_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("REFRESH_TOKEN_GET_FAILED").
			With("operation", "get refresh token by hash").
			Wrap(err)
	}
	return token, nil
}

// Save upserts on user_id, so a user never holds two rows. The stored ID
// and creation time are written back into token.
func (r *RefreshTokenRepository) Save(ctx context.Context, token *auth.RefreshToken) error {
	var idStr string
	err := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO refresh_tokens (`+refreshColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			token_hash = EXCLUDED.token_hash,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`,
		token.ID.String(),
		token.UserID.String(),
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
		token.UpdatedAt,
	).Scan(&idStr, &token.CreatedAt)
	if err != nil {
		return oops.Code("REFRESH_TOKEN_SAVE_FAILED").
			With("operation", "upsert refresh token").
			With("user_id", token.UserID.String()).
			Wrap(err)
	}

	id, err := parseULID(idStr, "refresh_token_id")
	if err != nil {
		return oops.Code("REFRESH_TOKEN_SAVE_FAILED").Wrap(err)
	}
	token.ID = id
	return nil
}

func scanRefreshToken(row pgx.Row) (*auth.RefreshToken, error) {
	var (
		token     auth.RefreshToken
		idStr     string
		userIDStr string
	)
	if err := row.Scan(&idStr, &userIDStr, &token.TokenHash, &token.ExpiresAt, &token.CreatedAt, &token.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if token.ID, err = parseULID(idStr, "refresh_token_id"); err != nil {
		return nil, err
	}
	if token.UserID, err = parseULID(userIDStr, "user_id"); err != nil {
		return nil, err
	}
	return &token, nil
}
