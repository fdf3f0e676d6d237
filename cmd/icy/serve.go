// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/icyfeed/icy/internal/config"
	"github.com/icyfeed/icy/internal/control"
	"github.com/icyfeed/icy/internal/httpapi"
	"github.com/icyfeed/icy/internal/i18n"
	"github.com/icyfeed/icy/internal/logging"
	"github.com/icyfeed/icy/internal/observability"
	"github.com/icyfeed/icy/internal/store"
)

// readinessInterval is how often the database is pinged for health.
const readinessInterval = 10 * time.Second

// ServeDeps holds injectable dependencies for the serve command. Nil
// fields use their defaults.
type ServeDeps struct {
	// PoolFactory opens the database pool. Default: store.Connect.
	PoolFactory func(ctx context.Context, url string, cfg store.PoolConfig, logger *slog.Logger) (*pgxpool.Pool, error)

	// MigratorFactory opens a migrator for auto-migrate. Default: store.NewMigrator.
	MigratorFactory func(databaseURL string) (Migrator, error)

	// Listen binds the HTTP listener. Default: net.Listen.
	Listen func(network, address string) (net.Listener, error)

	// Ready, if set, receives the bound HTTP address once serving.
	Ready func(addr string)
}

func (d *ServeDeps) withDefaults() *ServeDeps {
	out := ServeDeps{}
	if d != nil {
		out = *d
	}
	if out.PoolFactory == nil {
		out.PoolFactory = store.Connect
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = (&MigrateDeps{}).factory()
	}
	if out.Listen == nil {
		out.Listen = net.Listen
	}
	return &out
}

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return newServeCmd(nil)
}

func newServeCmd(deps *ServeDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API together with the metrics endpoint and, when
configured, the gRPC health listener. SIGINT or SIGTERM drains and exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd, deps)
		},
	}

	flags := cmd.Flags()
	flags.String("http-addr", ":8080", "HTTP listen address")
	flags.String("database-url", "", "PostgreSQL URL (default: $DATABASE_URL)")
	flags.Bool("auto-migrate", false, "apply pending migrations before serving")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "json", "log format (json or text)")
	flags.String("metrics-addr", "127.0.0.1:9100", "metrics/health HTTP address (empty = disabled)")
	flags.String("control-addr", "", "gRPC health address (empty = disabled)")
	flags.Bool("secure-cookies", false, "mark session cookies Secure")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, deps *ServeDeps) error {
	if ctx == nil {
		ctx = context.Background()
	}
	deps = deps.withDefaults()

	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.SetDefault(logging.Options{
		Service: "icy",
		Version: version,
		Format:  cfg.Log.Format,
		Level:   cfg.Log.Level,
		Writer:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := autoMigrate(cfg.Database.URL, deps, logger); err != nil {
			return err
		}
	}

	pool, err := deps.PoolFactory(ctx, cfg.Database.URL, store.PoolConfig{
		MaxConns:        cfg.Database.MaxConns,
		ConnectAttempts: cfg.Database.ConnectAttempts,
		ConnectBackoff:  cfg.Database.ConnectBackoff,
	}, logger)
	if err != nil {
		return oops.With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	return serve(ctx, cmd, cfg, pool, deps, logger)
}

func serve(ctx context.Context, cmd *cobra.Command, cfg *config.Config, pool *pgxpool.Pool, deps *ServeDeps, logger *slog.Logger) error {
	catalog, err := i18n.Load()
	if err != nil {
		return err
	}

	health, err := control.NewHealthServer(control.Options{
		CertFile: cfg.Control.CertFile,
		KeyFile:  cfg.Control.KeyFile,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	obs := observability.NewServer(cfg.Metrics.Addr, health.Ready, logger)

	a, err := newApp(cfg, pool, obs.Metrics(), catalog, logger)
	if err != nil {
		return err
	}
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := httpapi.NewRouter(httpapi.Config{
		Sessions:      a.sessions,
		Accounts:      a.accounts,
		Audit:         a.audit,
		Messages:      catalog,
		Metrics:       obs.Metrics(),
		Logger:        logger,
		SecureCookies: cfg.HTTP.SecureCookies,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 3)
	forward := func(name string, ch <-chan error) {
		for err := range ch {
			if err != nil {
				errCh <- oops.With("server", name).Wrap(err)
			}
		}
	}

	if cfg.Metrics.Addr != "" {
		obsErr, err := obs.Start()
		if err != nil {
			return err
		}
		go forward("observability", obsErr)
	}
	if cfg.Control.Addr != "" {
		controlErr, err := health.Start(cfg.Control.Addr)
		if err != nil {
			return err
		}
		go forward("control", controlErr)
	}

	watchCtx, stopWatch := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		health.WatchDependency(watchCtx, readinessInterval, pool.Ping)
	}()

	listener, err := deps.Listen("tcp", cfg.HTTP.Addr)
	if err != nil {
		stopWatch()
		wg.Wait()
		return oops.Code("HTTP_LISTEN_FAILED").With("addr", cfg.HTTP.Addr).Wrap(err)
	}
	httpSrv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- oops.With("server", "http").Wrap(err)
		}
	}()

	addr := listener.Addr().String()
	logger.Info("icy ready", "http_addr", addr, "metrics_addr", obs.Addr(), "control_addr", cfg.Control.Addr)
	cmd.Printf("icy serving on %s\n", addr)
	if deps.Ready != nil {
		deps.Ready(addr)
	}

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case serveErr = <-errCh:
		logger.Error("server failed, shutting down", "error", serveErr)
	}

	stopWatch()
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	_ = health.Stop(shutdownCtx)
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error stopping HTTP server", "error", err)
	}
	if err := obs.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping observability server", "error", err)
	}

	logger.Info("shutdown complete")
	return serveErr
}

func autoMigrate(databaseURL string, deps *ServeDeps, logger *slog.Logger) error {
	m, err := deps.MigratorFactory(databaseURL)
	if err != nil {
		return oops.Code("MIGRATION_INIT_FAILED").Wrap(err)
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			logger.Warn("failed to close migrator", "error", closeErr)
		}
	}()

	if err := m.Up(); err != nil {
		return oops.With("operation", "auto-migrate").Wrap(err)
	}
	current, _, err := m.Version()
	if err != nil {
		return err
	}
	logger.Info("schema up to date", "version", current)
	return nil
}
