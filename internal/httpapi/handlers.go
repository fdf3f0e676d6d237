// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/icyfeed/icy/internal/auth"
	"github.com/icyfeed/icy/internal/i18n"
)

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Intro    string `json:"intro"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	CurrentPassword string  `json:"current_password" binding:"required"`
	NewPassword     *string `json:"new_password"`
	Nickname        *string `json:"nickname"`
	Intro           *string `json:"intro"`
}

type withdrawRequest struct {
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	Message     string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (a *api) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.invalidInput(c, err)
		return
	}

	user, err := a.accounts.Signup(c.Request.Context(), auth.SignupRequest(req))
	if err != nil {
		a.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":      user.ID.String(),
		"message": a.message(c, i18n.CodeSignupSuccess),
	})
}

func (a *api) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.invalidInput(c, err)
		return
	}

	ctx := c.Request.Context()
	token, err := a.sessions.Login(ctx, req.Username, req.Password, cookieSink{c})
	if err != nil {
		a.renderError(c, err)
		return
	}
	a.sessions.RecordLogin(ctx, req.Username)

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		Message:     a.message(c, i18n.CodeLoginSuccess),
	})
}

func (a *api) logout(c *gin.Context) {
	ctx := c.Request.Context()
	a.sessions.Logout(ctx, cookieSink{c})
	a.sessions.RecordLogout(ctx, identity(c).Username())

	c.JSON(http.StatusOK, messageResponse{Message: a.message(c, i18n.CodeLogoutSuccess)})
}

func (a *api) refresh(c *gin.Context) {
	value, _ := c.Cookie(auth.RefreshTokenCookie)

	token, err := a.sessions.Refresh(c.Request.Context(), value, cookieSink{c})
	if err != nil {
		a.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{AccessToken: token})
}

func (a *api) getProfile(c *gin.Context) {
	id, err := ulid.ParseStrict(c.Param("id"))
	if err != nil {
		a.invalidInput(c, err)
		return
	}

	profile, err := a.accounts.GetProfile(c.Request.Context(), id)
	if err != nil {
		a.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (a *api) updateProfile(c *gin.Context) {
	id, err := ulid.ParseStrict(c.Param("id"))
	if err != nil {
		a.invalidInput(c, err)
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.invalidInput(c, err)
		return
	}

	user, err := a.accounts.UpdateProfile(c.Request.Context(), identity(c), id, auth.UpdateProfileRequest(req))
	if err != nil {
		a.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Profile())
}

func (a *api) withdraw(c *gin.Context) {
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.invalidInput(c, err)
		return
	}

	ctx := c.Request.Context()
	ok, err := a.accounts.Withdraw(ctx, identity(c).Username(), req.Password)
	if err != nil {
		a.renderError(c, err)
		return
	}

	code := i18n.CodeWithdrawFailure
	if ok {
		code = i18n.CodeWithdrawSuccess
		a.sessions.Logout(ctx, cookieSink{c})
	}
	c.JSON(http.StatusOK, gin.H{
		"withdrawn": ok,
		"message":   a.message(c, code),
	})
}

func (a *api) listLogs(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			a.invalidInput(c, err)
			return
		}
		limit = n
	}

	entries, err := a.audit.List(c.Request.Context(), identity(c).Username(), limit)
	if err != nil {
		a.renderError(c, err)
		return
	}
	if entries == nil {
		entries = []*auth.AuditEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"logs": entries})
}
