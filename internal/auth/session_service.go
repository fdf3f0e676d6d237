// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/icyfeed/icy/internal/i18n"
	"github.com/icyfeed/icy/pkg/errutil"
)

// SessionServiceConfig holds the dependencies of a SessionService.
// Messages, Metrics, Logger and Clock are optional.
type SessionServiceConfig struct {
	Users         UserRepository
	RefreshTokens RefreshTokenRepository
	Hasher        PasswordHasher
	Tokens        TokenIssuer
	Audit         *AuditLog
	Messages      MessageResolver
	Metrics       Metrics
	Logger        *slog.Logger
	Clock         func() time.Time

	// AccessTokenTTL is the max age of the access cookie.
	AccessTokenTTL time.Duration
	// SecureCookies marks emitted cookies Secure.
	SecureCookies bool
}

// SessionService logs users in and out and authenticates requests.
type SessionService struct {
	users         UserRepository
	refreshTokens RefreshTokenRepository
	hasher        PasswordHasher
	tokens        TokenIssuer
	audit         *AuditLog
	fail          failures
	metrics       Metrics
	logger        *slog.Logger
	now           func() time.Time
	accessTTL     time.Duration
	secure        bool
}

// NewSessionService creates a SessionService.
func NewSessionService(cfg SessionServiceConfig) (*SessionService, error) {
	if cfg.Users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if cfg.RefreshTokens == nil {
		return nil, oops.Errorf("refresh tokens repository is required")
	}
	if cfg.Hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if cfg.Tokens == nil {
		return nil, oops.Errorf("token issuer is required")
	}
	if cfg.Audit == nil {
		return nil, oops.Errorf("audit log is required")
	}

	s := &SessionService{
		users:         cfg.Users,
		refreshTokens: cfg.RefreshTokens,
		hasher:        cfg.Hasher,
		tokens:        cfg.Tokens,
		audit:         cfg.Audit,
		fail:          failures{messages: cfg.Messages},
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
		now:           cfg.Clock,
		accessTTL:     cfg.AccessTokenTTL,
		secure:        cfg.SecureCookies,
	}
	if s.fail.messages == nil {
		s.fail.messages = defaultMessages
	}
	if s.metrics == nil {
		s.metrics = NopMetrics{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.accessTTL <= 0 {
		s.accessTTL = DefaultAccessTokenTTL
	}
	return s, nil
}

// Login verifies credentials, issues an access token and rotates the
// user's refresh token. Both tokens are emitted as http-only cookies;
// the access token is also returned.
func (s *SessionService) Login(ctx context.Context, username, password string, sink CookieSink) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.metrics.LoginAttempted(LoginUserNotFound)
			return "", s.fail.new(ctx, KindNotFound, i18n.CodeUserNotFound).
				With("username", username).
				Errorf("user not found")
		}
		s.metrics.LoginAttempted(LoginError)
		return "", oops.Code("LOGIN_FAILED").
			With("operation", "get user by username").
			With("username", username).
			Wrap(err)
	}

	valid, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.metrics.LoginAttempted(LoginError)
		return "", oops.Code("LOGIN_FAILED").
			With("operation", "verify password").
			With("username", username).
			Wrap(err)
	}
	if !valid {
		s.metrics.LoginAttempted(LoginInvalidCredentials)
		return "", s.fail.new(ctx, KindInvalidCredentials, i18n.CodeInvalidPassword).
			With("username", username).
			Errorf("invalid password")
	}

	if s.hasher.NeedsUpgrade(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		s.metrics.LoginAttempted(LoginError)
		return "", oops.Code("LOGIN_FAILED").
			With("operation", "issue access token").
			With("username", username).
			Wrap(err)
	}

	refreshValue, err := s.rotateRefreshToken(ctx, user)
	if err != nil {
		s.metrics.LoginAttempted(LoginError)
		return "", err
	}

	sink.SetCookie(Cookie{
		Name:     RefreshTokenCookie,
		Value:    refreshValue,
		MaxAge:   RefreshTokenExpiry,
		HTTPOnly: true,
		Secure:   s.secure,
	})
	sink.SetCookie(s.accessCookie(accessToken))

	s.metrics.LoginAttempted(LoginSucceeded)
	return accessToken, nil
}

// rotateRefreshToken restarts the user's refresh token, creating one on
// first login, and returns the new plaintext value.
func (s *SessionService) rotateRefreshToken(ctx context.Context, user *User) (string, error) {
	now := s.now()

	token, err := s.refreshTokens.GetByUser(ctx, user.ID)
	var value string
	switch {
	case errors.Is(err, ErrNotFound):
		token, value, err = NewRefreshToken(user.ID, now)
		if err != nil {
			return "", oops.Code("LOGIN_FAILED").
				With("operation", "create refresh token").
				Wrap(err)
		}
	case err != nil:
		return "", oops.Code("LOGIN_FAILED").
			With("operation", "get refresh token").
			With("user_id", user.ID.String()).
			Wrap(err)
	default:
		value, err = token.Rotate(now)
		if err != nil {
			return "", oops.Code("LOGIN_FAILED").
				With("operation", "rotate refresh token").
				Wrap(err)
		}
	}

	if err := s.refreshTokens.Save(ctx, token); err != nil {
		return "", oops.Code("LOGIN_FAILED").
			With("operation", "save refresh token").
			With("user_id", user.ID.String()).
			Wrap(err)
	}
	return value, nil
}

// upgradeHash re-hashes a legacy password hash. Only the hash column is
// written, and only if it still holds the hash that was verified, so a
// withdrawal or profile change committed meanwhile is never overwritten.
// Login succeeds regardless.
func (s *SessionService) upgradeHash(ctx context.Context, user *User, password string) {
	newHash, err := s.hasher.Hash(password)
	if err != nil {
		errutil.LogErrorContext(ctx, s.logger, "password hash upgrade failed", err)
		return
	}
	changed, err := s.users.UpdatePasswordHash(ctx, user.ID, user.PasswordHash, newHash, s.now())
	if err != nil {
		errutil.LogErrorContext(ctx, s.logger, "password hash upgrade failed", err)
		return
	}
	if !changed {
		s.logger.DebugContext(ctx, "password hash changed concurrently, upgrade skipped",
			"user_id", user.ID.String())
	}
}

// Logout clears both session cookies. No server-side state changes.
func (s *SessionService) Logout(_ context.Context, sink CookieSink) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		sink.SetCookie(Cookie{Name: name, HTTPOnly: true, Secure: s.secure})
	}
}

// RecordLogin appends a login audit entry. It never fails.
func (s *SessionService) RecordLogin(ctx context.Context, username string) {
	s.audit.Record(ctx, username, ActionLogin)
}

// RecordLogout appends a logout audit entry. It never fails.
func (s *SessionService) RecordLogout(ctx context.Context, username string) {
	s.audit.Record(ctx, username, ActionLogout)
}

// Refresh exchanges a live refresh token for a new access token, which is
// emitted as the access cookie and returned.
func (s *SessionService) Refresh(ctx context.Context, refreshValue string, sink CookieSink) (string, error) {
	if refreshValue == "" {
		return "", s.fail.new(ctx, KindUnauthenticated, i18n.CodeUnauthenticated).
			Errorf("refresh token missing")
	}

	token, err := s.refreshTokens.GetByTokenHash(ctx, HashRefreshToken(refreshValue))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", s.fail.new(ctx, KindUnauthenticated, i18n.CodeUnauthenticated).
				Errorf("unknown refresh token")
		}
		return "", oops.Code("REFRESH_FAILED").
			With("operation", "get refresh token").
			Wrap(err)
	}
	if token.IsExpiredAt(s.now()) {
		return "", s.fail.new(ctx, KindUnauthenticated, i18n.CodeUnauthenticated).
			With("user_id", token.UserID.String()).
			With("expired_at", token.ExpiresAt).
			Errorf("refresh token expired")
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", s.fail.new(ctx, KindUnauthenticated, i18n.CodeUnauthenticated).
				With("user_id", token.UserID.String()).
				Errorf("refresh token owner not found")
		}
		return "", oops.Code("REFRESH_FAILED").
			With("operation", "get user by id").
			Wrap(err)
	}
	if user.IsWithdrawn() {
		return "", s.fail.new(ctx, KindInvalidState, i18n.CodeInvalidUser).
			With("user_id", user.ID.String()).
			Errorf("user is withdrawn")
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return "", oops.Code("REFRESH_FAILED").
			With("operation", "issue access token").
			Wrap(err)
	}
	sink.SetCookie(s.accessCookie(accessToken))
	return accessToken, nil
}

// Authenticate verifies an access token and resolves the caller.
// Withdrawn or missing users are unauthenticated.
func (s *SessionService) Authenticate(ctx context.Context, accessToken string) (Identity, error) {
	claims, err := s.tokens.ParseAccessToken(accessToken)
	if err != nil {
		s.logger.DebugContext(ctx, "access token rejected", "error", err)
		return Identity{}, s.fail.new(ctx, KindUnauthenticated, i18n.CodeUnauthenticated).
			Errorf("invalid access token")
	}

	user, err := s.users.GetByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Identity{}, s.fail.new(ctx, KindUnauthenticated, i18n.CodeUnauthenticated).
				With("username", claims.Username).
				Errorf("token subject not found")
		}
		return Identity{}, oops.Code("AUTHENTICATE_FAILED").
			With("operation", "get user by username").
			Wrap(err)
	}
	if user.IsWithdrawn() {
		return Identity{}, s.fail.new(ctx, KindUnauthenticated, i18n.CodeUnauthenticated).
			With("username", user.Username).
			Errorf("user is withdrawn")
	}
	return identityOf(user), nil
}

func (s *SessionService) accessCookie(token string) Cookie {
	return Cookie{
		Name:     AccessTokenCookie,
		Value:    token,
		MaxAge:   s.accessTTL,
		HTTPOnly: true,
		Secure:   s.secure,
	}
}
