// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package auth

import "github.com/oklog/ulid/v2"

// Identity is the authenticated caller. SessionService.Authenticate
// produces one per request; services receive it by value.
type Identity struct {
	userID   ulid.ULID
	username string
}

// UserID returns the caller's user ID.
func (i Identity) UserID() ulid.ULID {
	return i.userID
}

// Username returns the caller's username.
func (i Identity) Username() string {
	return i.username
}

// IsZero reports whether i is the zero Identity (no authenticated caller).
func (i Identity) IsZero() bool {
	return i.userID.Compare(ulid.ULID{}) == 0
}

// Owns reports whether the caller is the user identified by id.
func (i Identity) Owns(id ulid.ULID) bool {
	return !i.IsZero() && i.userID.Compare(id) == 0
}

// NewIdentity builds the Identity of a caller whose credentials were
// already verified elsewhere. Services trust it without further checks.
func NewIdentity(userID ulid.ULID, username string) Identity {
	return Identity{userID: userID, username: username}
}

func identityOf(u *User) Identity {
	return Identity{userID: u.ID, username: u.Username}
}
