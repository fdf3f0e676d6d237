// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package main

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/icyfeed/icy/internal/auth"
	"github.com/icyfeed/icy/internal/auth/postgres"
	"github.com/icyfeed/icy/internal/config"
	"github.com/icyfeed/icy/internal/i18n"
)

// app bundles the services behind the HTTP API.
type app struct {
	sessions *auth.SessionService
	accounts *auth.AccountService
	audit    *auth.AuditLog
}

func newApp(cfg *config.Config, pool *pgxpool.Pool, metrics auth.Metrics, catalog *i18n.Catalog, logger *slog.Logger) (*app, error) {
	users := postgres.NewUserRepository(pool)
	hasher := auth.NewArgon2idHasher()

	issuer, err := auth.NewJWTIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL)
	if err != nil {
		return nil, oops.With("operation", "create token issuer").Wrap(err)
	}

	audit, err := auth.NewAuditLogWithLogger(postgres.NewAuditLogRepository(pool), metrics, logger)
	if err != nil {
		return nil, oops.With("operation", "create audit log").Wrap(err)
	}

	sessions, err := auth.NewSessionService(auth.SessionServiceConfig{
		Users:          users,
		RefreshTokens:  postgres.NewRefreshTokenRepository(pool),
		Hasher:         hasher,
		Tokens:         issuer,
		Audit:          audit,
		Messages:       catalog,
		Metrics:        metrics,
		Logger:         logger,
		AccessTokenTTL: cfg.Auth.AccessTokenTTL,
		SecureCookies:  cfg.HTTP.SecureCookies,
	})
	if err != nil {
		return nil, oops.With("operation", "create session service").Wrap(err)
	}

	accounts, err := auth.NewAccountService(auth.AccountServiceConfig{
		Users:      users,
		Hasher:     hasher,
		Transactor: postgres.NewTransactor(pool),
		Audit:      audit,
		Messages:   catalog,
		Metrics:    metrics,
		Logger:     logger,
	})
	if err != nil {
		return nil, oops.With("operation", "create account service").Wrap(err)
	}

	return &app{sessions: sessions, accounts: accounts, audit: audit}, nil
}
