// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package auth

import "context"

// Transactor runs fn inside a single storage transaction. Repository calls
// made with the context passed to fn participate in that transaction.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
