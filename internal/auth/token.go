// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/samber/oops"
)

// Token configuration.
const (
	AccessTokenType       = "access"
	DefaultAccessTokenTTL = time.Hour
	MinSigningKeyLength   = 32
)

// Claims are the claims carried by an access token.
type Claims struct {
	jwt.RegisteredClaims
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
}

// TokenIssuer creates and verifies signed access tokens.
type TokenIssuer interface {
	// IssueAccessToken signs a new access token for user.
	IssueAccessToken(user *User) (string, error)

	// ParseAccessToken verifies token and returns its claims.
	ParseAccessToken(token string) (*Claims, error)
}

// JWTIssuer issues HS256 access tokens.
type JWTIssuer struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// JWTOption customizes a JWTIssuer.
type JWTOption func(*JWTIssuer)

// WithTokenClock injects the clock used for issuing and validating tokens.
func WithTokenClock(now func() time.Time) JWTOption {
	return func(j *JWTIssuer) {
		if now != nil {
			j.now = now
		}
	}
}

// NewJWTIssuer creates a JWTIssuer. The signing key must be at least
// MinSigningKeyLength bytes. A zero ttl uses DefaultAccessTokenTTL.
func NewJWTIssuer(key []byte, issuer string, ttl time.Duration, opts ...JWTOption) (*JWTIssuer, error) {
	if len(key) < MinSigningKeyLength {
		return nil, oops.Code("TOKEN_KEY_INVALID").
			With("min_length", MinSigningKeyLength).
			Errorf("signing key must be at least %d bytes", MinSigningKeyLength)
	}
	if issuer == "" {
		return nil, oops.Code("TOKEN_ISSUER_INVALID").Errorf("issuer cannot be empty")
	}
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}

	j := &JWTIssuer{
		key:    append([]byte(nil), key...),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// TTL returns the access token lifetime.
func (j *JWTIssuer) TTL() time.Duration {
	return j.ttl
}

// IssueAccessToken signs a new access token carrying the username claim.
// Every token gets a fresh jti so two tokens issued in the same second differ.
func (j *JWTIssuer) IssueAccessToken(user *User) (string, error) {
	if user == nil || user.Username == "" {
		return "", oops.Code("TOKEN_ISSUE_FAILED").Errorf("user cannot be empty")
	}

	now := j.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		Username:  user.Username,
		TokenType: AccessTokenType,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.key)
	if err != nil {
		return "", oops.Code("TOKEN_ISSUE_FAILED").
			With("username", user.Username).
			Wrap(err)
	}
	return signed, nil
}

// ParseAccessToken verifies the signature, issuer, expiry and token type.
func (j *JWTIssuer) ParseAccessToken(token string) (*Claims, error) {
	if token == "" {
		return nil, oops.Code("TOKEN_EMPTY").Errorf("token cannot be empty")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, oops.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.key, nil
	},
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, oops.Code("TOKEN_EXPIRED").Wrap(err)
		}
		return nil, oops.Code("TOKEN_INVALID").Wrap(err)
	}
	if !parsed.Valid {
		return nil, oops.Code("TOKEN_INVALID").Errorf("token is not valid")
	}
	if claims.TokenType != AccessTokenType {
		return nil, oops.Code("TOKEN_INVALID").
			With("token_type", claims.TokenType).
			Errorf("not an access token")
	}
	if claims.Username == "" {
		return nil, oops.Code("TOKEN_INVALID").Errorf("token carries no username")
	}
	return claims, nil
}
