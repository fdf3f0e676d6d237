// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

// Package auth provides accounts and sessions for the icy feed.
//
// # Domain Types
//
// Domain types should be created using their constructors:
//   - NewUser - creates an active User with a validated username and password hash
//   - NewRefreshToken - creates a RefreshToken and returns its plaintext value
//
// Direct struct initialization bypasses validation and may create invalid state.
// Repository implementations receive pre-validated types from these constructors.
//
// A User moves from StatusInAction to StatusSecession exactly once; see
// User.TransitionTo. Withdrawn users keep their row and username.
//
// # Services
//
// Service types coordinate domain operations:
//   - SessionService - login, logout, refresh and request authentication
//   - AccountService - signup, profile reads and updates, withdrawal
//   - AuditLog - best-effort login, logout and withdrawal history
//
// Services are created with New*Service constructors that validate dependencies.
//
// # Errors
//
// Caller-facing failures carry a Kind (see KindOf) and a localized public
// message. Everything else is an infrastructure error with an oops code.
package auth

//go:generate go run github.com/vektra/mockery/v2@v2.53.3 --config ../../.mockery.yaml
