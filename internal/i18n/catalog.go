// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

// Package i18n resolves message codes to localized text.
package i18n

import (
	"context"
	"embed"
	"path"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localesFS embed.FS

// Message codes shared by the services and the HTTP surface.
const (
	CodeUserNotFound    = "entity.not.found.user"
	CodeInvalidPassword = "invalid.password"
	CodeInvalidUser     = "invalid.user"
	CodeInvalidAuth     = "invalid.auth"
	CodeAlreadyExist    = "already.exist"
	CodeSamePassword    = "same.password"
	CodeUnauthenticated = "unauthenticated"
	CodeInvalidInput    = "invalid.input"
	CodeInternal        = "internal.error"

	CodeLoginSuccess    = "login.success"
	CodeLogoutSuccess   = "logout.success"
	CodeSignupSuccess   = "signup.success"
	CodeWithdrawSuccess = "withdraw.success"
	CodeWithdrawFailure = "withdraw.failure"
)

// fallbackMessages are used when no catalog carries a code.
var fallbackMessages = map[string]string{
	CodeUserNotFound:    "User not found.",
	CodeInvalidPassword: "Invalid Password",
	CodeInvalidUser:     "Invalid User",
	CodeInvalidAuth:     "Invalid Authority",
	CodeAlreadyExist:    "Duplicate user exists.",
	CodeSamePassword:    "The new password must differ from the current password.",
	CodeUnauthenticated: "Authentication required.",
	CodeInvalidInput:    "Invalid input.",
	CodeInternal:        "Internal server error.",
}

// Catalog holds per-locale message tables.
type Catalog struct {
	tags     []language.Tag
	messages map[language.Tag]map[string]string
	matcher  language.Matcher
}

// NewCatalog builds a Catalog from in-memory tables. English is always
// the first supported tag so that negotiation falls back to it.
func NewCatalog(tables map[language.Tag]map[string]string) *Catalog {
	c := &Catalog{
		tags:     []language.Tag{language.English},
		messages: make(map[language.Tag]map[string]string, len(tables)+1),
	}
	c.messages[language.English] = map[string]string{}
	for tag, table := range tables {
		base := baseTag(tag)
		if _, ok := c.messages[base]; !ok {
			c.tags = append(c.tags, base)
			c.messages[base] = map[string]string{}
		}
		for code, text := range table {
			c.messages[base][code] = text
		}
	}
	c.matcher = language.NewMatcher(c.tags)
	return c
}

// Load reads the embedded locale files (locales/<tag>.yaml).
func Load() (*Catalog, error) {
	entries, err := localesFS.ReadDir("locales")
	if err != nil {
		return nil, oops.Code("I18N_LOAD_FAILED").With("operation", "read locales dir").Wrap(err)
	}

	tables := make(map[language.Tag]map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") {
			continue
		}
		tag, err := language.Parse(strings.TrimSuffix(name, ".yaml"))
		if err != nil {
			return nil, oops.Code("I18N_LOAD_FAILED").With("file", name).Wrap(err)
		}
		data, err := localesFS.ReadFile(path.Join("locales", name))
		if err != nil {
			return nil, oops.Code("I18N_LOAD_FAILED").With("file", name).Wrap(err)
		}
		table := map[string]string{}
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, oops.Code("I18N_LOAD_FAILED").With("file", name).Wrap(err)
		}
		tables[tag] = table
	}
	return NewCatalog(tables), nil
}

// Resolve returns the text for code in the closest supported locale.
// Unknown codes fall back to English, then to the built-in strings, then
// to the code itself.
func (c *Catalog) Resolve(code string, locale language.Tag) string {
	if c != nil {
		if text, ok := c.messages[c.match(locale)][code]; ok {
			return text
		}
		if text, ok := c.messages[language.English][code]; ok {
			return text
		}
	}
	if text, ok := fallbackMessages[code]; ok {
		return text
	}
	return code
}

// Negotiate picks a supported locale from an Accept-Language header value.
func (c *Catalog) Negotiate(acceptLanguage string) language.Tag {
	if c == nil || acceptLanguage == "" {
		return language.English
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	return c.match(tags...)
}

// Supported returns the locales the catalog carries.
func (c *Catalog) Supported() []language.Tag {
	out := make([]language.Tag, len(c.tags))
	copy(out, c.tags)
	return out
}

func (c *Catalog) match(tags ...language.Tag) language.Tag {
	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return language.English
	}
	return c.tags[idx]
}

func baseTag(tag language.Tag) language.Tag {
	base, _ := tag.Base()
	return language.Make(base.String())
}

type localeKey struct{}

// WithLocale returns a context carrying the request locale.
func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, localeKey{}, tag)
}

// LocaleFrom returns the request locale, or English when none was set.
func LocaleFrom(ctx context.Context) language.Tag {
	if tag, ok := ctx.Value(localeKey{}).(language.Tag); ok {
		return tag
	}
	return language.English
}
