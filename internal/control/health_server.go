// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

// Package control runs the gRPC control listener. It serves the standard
// grpc.health.v1 service so orchestrators can probe the process.
package control

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/oops"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported alongside the overall ("") status.
const ServiceName = "icy.v1.Auth"

// Options configures a HealthServer. CertFile and KeyFile enable TLS when both are set.
type Options struct {
	CertFile string
	KeyFile  string
	Logger   *slog.Logger
}

// HealthServer serves grpc.health.v1. It starts NOT_SERVING until SetReady(true).
type HealthServer struct {
	health     *health.Server
	grpcServer *grpc.Server
	logger     *slog.Logger
	ready      atomic.Bool
	started    atomic.Bool
	stopOnce   sync.Once
}

// NewHealthServer creates the gRPC server and registers the health service.
func NewHealthServer(opts Options) (*HealthServer, error) {
	var serverOpts []grpc.ServerOption
	if opts.CertFile != "" || opts.KeyFile != "" {
		if opts.CertFile == "" || opts.KeyFile == "" {
			return nil, oops.Code("CONTROL_TLS_INVALID").
				Errorf("both cert and key files are required for TLS")
		}
		creds, err := credentials.NewServerTLSFromFile(opts.CertFile, opts.KeyFile)
		if err != nil {
			return nil, oops.Code("CONTROL_TLS_INVALID").
				With("cert_file", opts.CertFile).
				Wrap(err)
		}
		serverOpts = append(serverOpts, grpc.Creds(creds))
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &HealthServer{
		health:     health.NewServer(),
		grpcServer: grpc.NewServer(serverOpts...),
		logger:     logger,
	}
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.SetReady(false)
	return s, nil
}

// Start listens on addr and serves in the background.
func (s *HealthServer) Start(addr string) (<-chan error, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, oops.Code("CONTROL_LISTEN_FAILED").With("addr", addr).Wrap(err)
	}
	errCh, err := s.Serve(listener)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}
	s.logger.Info("control server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Serve serves on an existing listener. The channel receives the serve
// result once and is then closed.
func (s *HealthServer) Serve(listener net.Listener) (<-chan error, error) {
	if !s.started.CompareAndSwap(false, true) {
		return nil, oops.Code("CONTROL_ALREADY_RUNNING").Errorf("control server already running")
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := s.grpcServer.Serve(listener); err != nil {
			s.logger.Error("control server error", "error", err)
			errCh <- err
		}
	}()
	return errCh, nil
}

// SetReady flips both the overall and the auth service status.
func (s *HealthServer) SetReady(ready bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.ready.Store(ready)
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Ready reports the last value passed to SetReady.
func (s *HealthServer) Ready() bool {
	return s.ready.Load()
}

// WatchDependency calls check every interval until ctx ends, marking the
// server ready while check succeeds. The first check runs immediately.
func (s *HealthServer) WatchDependency(ctx context.Context, interval time.Duration, check func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		err := check(ctx)
		if ctx.Err() != nil {
			return
		}
		if ready := err == nil; ready != s.Ready() {
			if ready {
				s.logger.InfoContext(ctx, "dependency healthy")
			} else {
				s.logger.WarnContext(ctx, "dependency unhealthy", "error", err)
			}
			s.SetReady(ready)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Stop reports NOT_SERVING to watchers and drains in-flight RPCs. When ctx
// ends first the server is stopped hard.
func (s *HealthServer) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		s.ready.Store(false)
		s.health.Shutdown()

		done := make(chan struct{})
		go func() {
			s.grpcServer.GracefulStop()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			s.grpcServer.Stop()
			<-done
		}
		s.logger.Info("control server stopped")
	})
	return nil
}
