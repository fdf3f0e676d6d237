// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/icyfeed/icy/internal/auth"
	"github.com/icyfeed/icy/internal/i18n"
	"github.com/icyfeed/icy/internal/logging"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

const identityKey = "icy.identity"

func (a *api) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func (a *api) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		a.renderError(c, oops.Code("PANIC").With("panic", recovered).Errorf("handler panicked"))
	})
}

func (a *api) locale() gin.HandlerFunc {
	return func(c *gin.Context) {
		tag := a.messages.Negotiate(c.GetHeader("Accept-Language"))
		c.Request = c.Request.WithContext(i18n.WithLocale(c.Request.Context(), tag))
		c.Next()
	}
}

func (a *api) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if a.metrics != nil {
			a.metrics.ObserveRequest(c.Request.Method, route, status, elapsed)
		}
		a.logger.InfoContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", route,
			"status", status,
			"duration", elapsed,
		)
	}
}

// authenticate resolves the caller from the access cookie, falling back to
// an Authorization: Bearer header.
func (a *api) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(auth.AccessTokenCookie)
		if err != nil || token == "" {
			token = bearerToken(c.GetHeader("Authorization"))
		}

		identity, err := a.sessions.Authenticate(c.Request.Context(), token)
		if err != nil {
			a.renderError(c, err)
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// identity returns the caller stored by authenticate.
func identity(c *gin.Context) auth.Identity {
	v, _ := c.Get(identityKey)
	id, _ := v.(auth.Identity)
	return id
}

// cookieSink writes auth cookies onto a gin response.
type cookieSink struct {
	c *gin.Context
}

func (s cookieSink) SetCookie(ck auth.Cookie) {
	maxAge := int(ck.MaxAge / time.Second)
	if ck.Value == "" && maxAge == 0 {
		maxAge = -1
	}
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(ck.Name, ck.Value, maxAge, "/", "", ck.Secure, ck.HTTPOnly)
}
