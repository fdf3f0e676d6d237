// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/icyfeed/icy/internal/auth"
	"github.com/icyfeed/icy/internal/i18n"
	"github.com/icyfeed/icy/pkg/errutil"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var kindStatus = map[auth.Kind]int{
	auth.KindNotFound:           http.StatusNotFound,
	auth.KindInvalidCredentials: http.StatusUnauthorized,
	auth.KindInvalidState:       http.StatusBadRequest,
	auth.KindUnauthorized:       http.StatusUnauthorized,
	auth.KindInvalidArgument:    http.StatusBadRequest,
	auth.KindAlreadyExists:      http.StatusConflict,
	auth.KindUnauthenticated:    http.StatusUnauthorized,
}

// StatusOf maps a service error to its HTTP status. Errors without a
// failure kind are internal.
func StatusOf(err error) int {
	if status, ok := kindStatus[auth.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (a *api) renderError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	status := StatusOf(err)

	resp := errorResponse{
		Code:    auth.MessageCode(err),
		Message: auth.PublicMessage(err),
	}
	if status == http.StatusInternalServerError {
		errutil.LogErrorContext(ctx, a.logger, "request failed", err)
		resp = errorResponse{Code: i18n.CodeInternal}
	}
	if resp.Message == "" {
		resp.Message = a.messages.Resolve(resp.Code, i18n.LocaleFrom(ctx))
	}
	c.AbortWithStatusJSON(status, resp)
}

// invalidInput renders a 400 for a malformed request.
func (a *api) invalidInput(c *gin.Context, err error) {
	a.logger.DebugContext(c.Request.Context(), "invalid request", "error", err)
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Code:    i18n.CodeInvalidInput,
		Message: a.message(c, i18n.CodeInvalidInput),
	})
}

func (a *api) message(c *gin.Context, code string) string {
	return a.messages.Resolve(code, i18n.LocaleFrom(c.Request.Context()))
}
