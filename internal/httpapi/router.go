// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

// Package httpapi exposes the auth services over HTTP with gin.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"golang.org/x/text/language"

	"github.com/icyfeed/icy/internal/auth"
)

// Sessions is the subset of auth.SessionService the API drives.
type Sessions interface {
	Login(ctx context.Context, username, password string, sink auth.CookieSink) (string, error)
	Logout(ctx context.Context, sink auth.CookieSink)
	RecordLogin(ctx context.Context, username string)
	RecordLogout(ctx context.Context, username string)
	Refresh(ctx context.Context, refreshValue string, sink auth.CookieSink) (string, error)
	Authenticate(ctx context.Context, accessToken string) (auth.Identity, error)
}

// Accounts is the subset of auth.AccountService the API drives.
type Accounts interface {
	Signup(ctx context.Context, req auth.SignupRequest) (*auth.User, error)
	GetProfile(ctx context.Context, userID ulid.ULID) (*auth.Profile, error)
	UpdateProfile(ctx context.Context, caller auth.Identity, userID ulid.ULID, req auth.UpdateProfileRequest) (*auth.User, error)
	Withdraw(ctx context.Context, username, password string) (bool, error)
}

// AuditLister lists a user's audit entries.
type AuditLister interface {
	List(ctx context.Context, username string, limit int) ([]*auth.AuditEntry, error)
}

// Messages negotiates locales and resolves message codes. *i18n.Catalog implements it.
type Messages interface {
	Negotiate(acceptLanguage string) language.Tag
	Resolve(code string, locale language.Tag) string
}

// RequestObserver records served requests. *observability.Metrics implements it.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Config holds the router dependencies. Metrics and Logger are optional.
type Config struct {
	Sessions      Sessions
	Accounts      Accounts
	Audit         AuditLister
	Messages      Messages
	Metrics       RequestObserver
	Logger        *slog.Logger
	SecureCookies bool
}

type api struct {
	sessions Sessions
	accounts Accounts
	audit    AuditLister
	messages Messages
	metrics  RequestObserver
	logger   *slog.Logger
	secure   bool
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(cfg Config) (*gin.Engine, error) {
	if cfg.Sessions == nil {
		return nil, oops.Errorf("sessions service is required")
	}
	if cfg.Accounts == nil {
		return nil, oops.Errorf("accounts service is required")
	}
	if cfg.Audit == nil {
		return nil, oops.Errorf("audit lister is required")
	}
	if cfg.Messages == nil {
		return nil, oops.Errorf("message catalog is required")
	}

	a := &api{
		sessions: cfg.Sessions,
		accounts: cfg.Accounts,
		audit:    cfg.Audit,
		messages: cfg.Messages,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		secure:   cfg.SecureCookies,
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}

	r := gin.New()
	r.Use(a.requestID(), a.recovery(), a.locale(), a.accessLog())
	r.NoRoute(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{
			Code:    "not.found",
			Message: http.StatusText(http.StatusNotFound),
		})
	})

	authed := a.authenticate()

	users := r.Group("/users")
	users.POST("/signup", a.signup)
	users.GET("/:id", a.getProfile)
	users.PUT("/:id", authed, a.updateProfile)
	users.PATCH("/signout", authed, a.withdraw)
	users.GET("/me/logs", authed, a.listLogs)

	logs := r.Group("/logs")
	logs.POST("/login", a.login)
	logs.POST("/logout", authed, a.logout)

	r.POST("/auth/refresh", a.refresh)

	return r, nil
}
