// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

// Package store owns the PostgreSQL connection pool and schema migrations.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// PoolConfig tunes Connect. Zero values take the defaults below.
type PoolConfig struct {
	MaxConns        int32
	ConnectAttempts uint64
	ConnectBackoff  time.Duration
}

// Connection defaults.
const (
	DefaultConnectAttempts = 5
	DefaultConnectBackoff  = 500 * time.Millisecond
	maxConnectBackoff      = 5 * time.Second
)

// Connect opens a pool and pings it, retrying with exponential backoff
// while the database is unreachable. A malformed URL fails immediately.
func Connect(ctx context.Context, databaseURL string, cfg PoolConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.Code("STORE_CONFIG_INVALID").
			With("operation", "parse database url").
			Wrap(err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.ConnectAttempts == 0 {
		cfg.ConnectAttempts = DefaultConnectAttempts
	}
	if cfg.ConnectBackoff <= 0 {
		cfg.ConnectBackoff = DefaultConnectBackoff
	}
	if logger == nil {
		logger = slog.Default()
	}

	backoff := retry.WithCappedDuration(maxConnectBackoff, retry.NewExponential(cfg.ConnectBackoff))
	backoff = retry.WithMaxRetries(cfg.ConnectAttempts-1, backoff)

	var attempt int
	pool, err := retry.DoValue(ctx, backoff, func(ctx context.Context) (*pgxpool.Pool, error) {
		attempt++
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, oops.With("operation", "create pool").Wrap(err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			logger.WarnContext(ctx, "database not ready",
				"attempt", attempt,
				"host", poolCfg.ConnConfig.Host,
				"error", err)
			return nil, retry.RetryableError(err)
		}
		return pool, nil
	})
	if err != nil {
		return nil, oops.Code("STORE_CONNECT_FAILED").
			With("attempts", attempt).
			With("host", poolCfg.ConnConfig.Host).
			Wrap(err)
	}
	return pool, nil
}
