// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestLoad_EmbeddedLocales(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	supported := catalog.Supported()
	assert.Contains(t, supported, language.English)
	assert.Contains(t, supported, language.Korean)
}

func TestCatalog_Resolve(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	tests := []struct {
		name   string
		code   string
		locale language.Tag
		want   string
	}{
		{"korean message", CodeUserNotFound, language.Korean, "해당 사용자가 없습니다."},
		{"english message", CodeInvalidPassword, language.English, "Invalid Password"},
		{"regional locale matches base", CodeInvalidUser, language.MustParse("ko-KR"), "유효하지 않은 사용자입니다."},
		{"unsupported locale falls back to english", CodeInvalidAuth, language.Japanese, "Invalid Authority"},
		{"unknown code returns the code", "no.such.code", language.Korean, "no.such.code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, catalog.Resolve(tt.code, tt.locale))
		})
	}
}

func TestCatalog_ResolveFallsBackToBuiltins(t *testing.T) {
	catalog := NewCatalog(map[language.Tag]map[string]string{
		language.Korean: {CodeInvalidUser: "유효하지 않은 사용자입니다."},
	})

	assert.Equal(t, "Duplicate user exists.", catalog.Resolve(CodeAlreadyExist, language.Korean))
	assert.Equal(t, "유효하지 않은 사용자입니다.", catalog.Resolve(CodeInvalidUser, language.Korean))
}

func TestCatalog_NilResolvesBuiltins(t *testing.T) {
	var catalog *Catalog
	assert.Equal(t, "User not found.", catalog.Resolve(CodeUserNotFound, language.Korean))
	assert.Equal(t, language.English, catalog.Negotiate("ko"))
}

func TestCatalog_Negotiate(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	assert.Equal(t, language.Korean, catalog.Negotiate("ko-KR,ko;q=0.9,en;q=0.8"))
	assert.Equal(t, language.English, catalog.Negotiate("en-US"))
	assert.Equal(t, language.English, catalog.Negotiate(""))
	assert.Equal(t, language.English, catalog.Negotiate("not a header;;;"))
}

func TestLocaleContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, language.English, LocaleFrom(ctx))

	ctx = WithLocale(ctx, language.Korean)
	assert.Equal(t, language.Korean, LocaleFrom(ctx))
}
