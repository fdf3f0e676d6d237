// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package errutil

import (
	"fmt"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RequireOops fails the test unless err carries an oops error and returns it.
func RequireOops(t *testing.T, err error) oops.OopsError {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T: %v", err, err)
	return oopsErr
}

// AssertErrorCode asserts that the deepest oops code on err equals code.
// Any string-based code type works, so domain kinds can be passed as is.
func AssertErrorCode[C ~string](t *testing.T, err error, code C) {
	t.Helper()
	assert.Equal(t, string(code), fmt.Sprint(RequireOops(t, err).Code()))
}

// AssertErrorContext asserts that err is an oops error with the given context key/value.
func AssertErrorContext(t *testing.T, err error, key string, value any) {
	t.Helper()
	ctx := RequireOops(t, err).Context()
	if assert.Contains(t, ctx, key) {
		assert.Equal(t, value, ctx[key])
	}
}

// AssertPublicMessage asserts the caller-facing message attached to err.
func AssertPublicMessage(t *testing.T, err error, want string) {
	t.Helper()
	assert.Equal(t, want, RequireOops(t, err).Public())
}
