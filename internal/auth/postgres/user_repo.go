// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/icyfeed/icy/internal/auth"
)

const userColumns = `id, username, nickname, password_hash, email, intro, status, created_at, updated_at`

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	pool poolIface
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create stores a new user.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		user.ID.String(),
		user.Username,
		user.Nickname,
		user.PasswordHash,
		user.Email,
		user.Intro,
		string(user.Status),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("USER_ALREADY_EXISTS").
				With("username", user.Username).
				Wrap(auth.ErrAlreadyExists)
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("username", user.Username).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id.String())
	return r.scanOne(row, "id", id.String())
}

// GetByIDForUpdate retrieves a user by ID and locks the row until the
// surrounding transaction ends. Outside a transaction the lock is released
// immediately.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id.String())
	return r.scanOne(row, "id", id.String())
}

// GetByUsername retrieves a user by exact username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return r.scanOne(row, "username", username)
}

// Update persists the mutable fields of a user.
func (r *UserRepository) Update(ctx context.Context, user *auth.User) error {
	result, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE users SET
			nickname = $2,
			password_hash = $3,
			email = $4,
			intro = $5,
			status = $6,
			updated_at = $7
		WHERE id = $1
	`,
		user.ID.String(),
		user.Nickname,
		user.PasswordHash,
		user.Email,
		user.Intro,
		string(user.Status),
		user.UpdatedAt,
	)
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", "update user").
			With("id", user.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", user.ID.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdatePasswordHash replaces the hash only while it still equals oldHash.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id ulid.ULID, oldHash, newHash string, at time.Time) (bool, error) {
	result, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE users SET
			password_hash = $3,
			updated_at = $4
		WHERE id = $1 AND password_hash = $2
	`, id.String(), oldHash, newHash, at)
	if err != nil {
		return false, oops.Code("USER_UPDATE_FAILED").
			With("operation", "update password hash").
			With("id", id.String()).
			Wrap(err)
	}
	return result.RowsAffected() == 1, nil
}

func (r *UserRepository) scanOne(row pgx.Row, key, value string) (*auth.User, error) {
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With(key, value).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").
			With("operation", "get user by "+key).
			With(key, value).
			Wrap(err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		user   auth.User
		idStr  string
		status string
	)
	if err := row.Scan(
		&idStr,
		&user.Username,
		&user.Nickname,
		&user.PasswordHash,
		&user.Email,
		&user.Intro,
		&status,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	id, err := parseULID(idStr, "user_id")
	if err != nil {
		return nil, err
	}
	user.ID = id
	user.Status = auth.Status(status)
	if !user.Status.Valid() {
		return nil, oops.Code("USER_INVALID_STATUS").
			With("user_id", idStr).
			With("status", status).
			Errorf("unknown user status")
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
