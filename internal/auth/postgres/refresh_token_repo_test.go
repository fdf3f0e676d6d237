// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icyfeed/icy/internal/auth"
	"github.com/icyfeed/icy/pkg/errutil"
)

func sampleRefreshToken(t *testing.T) *auth.RefreshToken {
	t.Helper()
	token, _, err := auth.NewRefreshToken(ulid.Make(), testTime)
	require.NoError(t, err)
	return token
}

func refreshRows(tokens ...*auth.RefreshToken) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "created_at", "updated_at"})
	for _, tk := range tokens {
		rows.AddRow(tk.ID.String(), tk.UserID.String(), tk.TokenHash, tk.ExpiresAt, tk.CreatedAt, tk.UpdatedAt)
	}
	return rows
}

func TestRefreshTokenRepository_GetByUser(t *testing.T) {
	ctx := context.Background()
	token := sampleRefreshToken(t)

	t.Run("found", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`FROM refresh_tokens WHERE user_id = \$1`).
			WithArgs(token.UserID.String()).
			WillReturnRows(refreshRows(token))

		got, err := NewRefreshTokenRepository(mock).GetByUser(ctx, token.UserID)
		require.NoError(t, err)
		assert.Equal(t, token, got)
	})

	t.Run("missing", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`FROM refresh_tokens WHERE user_id`).
			WithArgs(token.UserID.String()).
			WillReturnError(pgx.ErrNoRows)

		_, err := NewRefreshTokenRepository(mock).GetByUser(ctx, token.UserID)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestRefreshTokenRepository_GetByTokenHash(t *testing.T) {
	ctx := context.Background()
	token := sampleRefreshToken(t)

	t.Run("found", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`FROM refresh_tokens WHERE token_hash = \$1`).
			WithArgs(token.TokenHash).
			WillReturnRows(refreshRows(token))

		got, err := NewRefreshTokenRepository(mock).GetByTokenHash(ctx, token.TokenHash)
		require.NoError(t, err)
		assert.Equal(t, token.UserID, got.UserID)
	})

	t.Run("query failure", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`FROM refresh_tokens WHERE token_hash`).
			WithArgs(token.TokenHash).
			WillReturnError(errors.New("timeout"))

		_, err := NewRefreshTokenRepository(mock).GetByTokenHash(ctx, token.TokenHash)
		errutil.AssertErrorCode(t, err, "REFRESH_TOKEN_GET_FAILED")
	})
}

func TestRefreshTokenRepository_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("upserts on user and adopts the stored identity", func(t *testing.T) {
		mock := newMockPool(t)
		token := sampleRefreshToken(t)
		storedID := ulid.Make()
		created := testTime.Add(-72 * time.Hour)

		mock.ExpectQuery(`ON CONFLICT \(user_id\) DO UPDATE`).
			WithArgs(token.ID.String(), token.UserID.String(), token.TokenHash, token.ExpiresAt,
				token.CreatedAt, token.UpdatedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(storedID.String(), created))

		require.NoError(t, NewRefreshTokenRepository(mock).Save(ctx, token))
		assert.Equal(t, storedID, token.ID)
		assert.Equal(t, created, token.CreatedAt)
	})

	t.Run("failure is wrapped", func(t *testing.T) {
		mock := newMockPool(t)
		token := sampleRefreshToken(t)
		mock.ExpectQuery(`INSERT INTO refresh_tokens`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(errors.New("fk violation"))

		err := NewRefreshTokenRepository(mock).Save(ctx, token)
		errutil.AssertErrorCode(t, err, "REFRESH_TOKEN_SAVE_FAILED")
	})
}
