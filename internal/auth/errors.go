// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/oops"
	"golang.org/x/text/language"

	"github.com/icyfeed/icy/internal/i18n"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned by repositories on a uniqueness conflict.
var ErrAlreadyExists = errors.New("already exists")

// Kind classifies a failure reported by the services.
type Kind string

// Failure kinds. Each is also the oops code of the error.
const (
	KindNotFound           Kind = "NOT_FOUND"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindInvalidState       Kind = "INVALID_STATE"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindInvalidArgument    Kind = "INVALID_ARGUMENT"
	KindAlreadyExists      Kind = "ALREADY_EXISTS"
	KindUnauthenticated    Kind = "UNAUTHENTICATED"
)

var kinds = map[string]Kind{
	string(KindNotFound):           KindNotFound,
	string(KindInvalidCredentials): KindInvalidCredentials,
	string(KindInvalidState):       KindInvalidState,
	string(KindUnauthorized):       KindUnauthorized,
	string(KindInvalidArgument):    KindInvalidArgument,
	string(KindAlreadyExists):      KindAlreadyExists,
	string(KindUnauthenticated):    KindUnauthenticated,
}

// messageCodeKey is the oops context key holding the message code.
const messageCodeKey = "message_code"

// MessageResolver maps a message code and locale to display text.
type MessageResolver interface {
	Resolve(code string, locale language.Tag) string
}

// KindOf returns the failure kind of err, or "" for infrastructure errors.
func KindOf(err error) Kind {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	return kinds[fmt.Sprint(oopsErr.Code())]
}

// IsKind reports whether err is a failure of kind k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

// MessageCode returns the message code attached to err, if any.
func MessageCode(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Context()[messageCodeKey].(string)
	return code
}

// PublicMessage returns the localized message attached to err, if any.
func PublicMessage(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	return oopsErr.Public()
}

// failures builds taxonomy errors with a localized public message.
type failures struct {
	messages MessageResolver
}

func (f failures) new(ctx context.Context, kind Kind, messageCode string) oops.OopsErrorBuilder {
	return oops.Code(string(kind)).
		With(messageCodeKey, messageCode).
		Public(f.messages.Resolve(messageCode, i18n.LocaleFrom(ctx)))
}

// defaultMessages resolves against the built-in English strings only.
var defaultMessages MessageResolver = (*i18n.Catalog)(nil)
