// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package auth

import "time"

// Session cookie names.
const (
	AccessTokenCookie  = "Authorization"
	RefreshTokenCookie = "Refresh-Token"
)

// Cookie is a response cookie. A zero MaxAge with an empty Value clears it.
type Cookie struct {
	Name     string
	Value    string
	MaxAge   time.Duration
	HTTPOnly bool
	Secure   bool
}

// CookieSink receives the cookies an operation emits.
type CookieSink interface {
	SetCookie(c Cookie)
}
