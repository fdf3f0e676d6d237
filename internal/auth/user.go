// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Status is the lifecycle state of an account.
type Status string

// Account states. SECESSION is terminal.
const (
	StatusInAction  Status = "IN_ACTION"
	StatusSecession Status = "SECESSION"
)

// allowedTransitions lists the states each state may move to.
var allowedTransitions = map[Status][]Status{
	StatusInAction:  {StatusSecession},
	StatusSecession: {},
}

// ErrInvalidTransition is returned when a requested status change is not allowed.
var ErrInvalidTransition = oops.Code("USER_INVALID_TRANSITION").Errorf("invalid user status transition")

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransition reports whether s may move to target.
func (s Status) CanTransition(target Status) bool {
	for _, next := range allowedTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// User is an account record.
type User struct {
	ID           ulid.ULID
	Username     string
	Nickname     string
	PasswordHash string
	Email        string
	Intro        string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates an active user created at now. The password must
// already be hashed.
func NewUser(username, nickname, passwordHash, email, intro string, now time.Time) (*User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, oops.Code("USER_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if passwordHash == "" {
		return nil, oops.Code("USER_INVALID_HASH").Errorf("password hash cannot be empty")
	}

	return &User{
		ID:           ulid.Make(),
		Username:     username,
		Nickname:     nickname,
		PasswordHash: passwordHash,
		Email:        email,
		Intro:        intro,
		Status:       StatusInAction,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsWithdrawn reports whether the account has been withdrawn.
func (u *User) IsWithdrawn() bool {
	return u.Status == StatusSecession
}

// TransitionTo moves the user to target at now if the state machine allows it.
func (u *User) TransitionTo(target Status, now time.Time) error {
	if !u.Status.CanTransition(target) {
		return oops.Code("USER_INVALID_TRANSITION").
			With("from", string(u.Status)).
			With("to", string(target)).
			Wrap(ErrInvalidTransition)
	}
	u.Status = target
	u.UpdatedAt = now
	return nil
}

// Profile is the public view of a user.
type Profile struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Intro    string `json:"intro"`
	Email    string `json:"email"`
}

// Profile returns the public view of u. It never includes the password hash.
func (u *User) Profile() Profile {
	return Profile{
		Username: u.Username,
		Nickname: u.Nickname,
		Intro:    u.Intro,
		Email:    u.Email,
	}
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Create stores a new user. Returns ErrAlreadyExists on a duplicate username.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByIDForUpdate retrieves a user by ID and locks the row for the
	// surrounding transaction. Returns ErrNotFound if absent.
	GetByIDForUpdate(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByUsername retrieves a user by username. Returns ErrNotFound if absent.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Update persists all mutable fields of an existing user. Callers must
	// hold the row lock from GetByIDForUpdate.
	Update(ctx context.Context, user *User) error

	// UpdatePasswordHash swaps the password hash only while the stored hash
	// still equals oldHash, leaving every other column alone. It reports
	// whether the row changed; a concurrent change is not an error.
	UpdatePasswordHash(ctx context.Context, id ulid.ULID, oldHash, newHash string, at time.Time) (bool, error)
}
