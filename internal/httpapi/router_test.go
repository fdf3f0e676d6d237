// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icyfeed/icy/internal/auth"
	"github.com/icyfeed/icy/internal/i18n"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeSessions struct {
	login        func(ctx context.Context, username, password string, sink auth.CookieSink) (string, error)
	refresh      func(ctx context.Context, value string, sink auth.CookieSink) (string, error)
	authenticate func(ctx context.Context, token string) (auth.Identity, error)

	recordedLogins  []string
	recordedLogouts []string
	logouts         int
}

func (f *fakeSessions) Login(ctx context.Context, username, password string, sink auth.CookieSink) (string, error) {
	return f.login(ctx, username, password, sink)
}

func (f *fakeSessions) Logout(_ context.Context, sink auth.CookieSink) {
	f.logouts++
	sink.SetCookie(auth.Cookie{Name: auth.RefreshTokenCookie, HTTPOnly: true})
	sink.SetCookie(auth.Cookie{Name: auth.AccessTokenCookie, HTTPOnly: true})
}

func (f *fakeSessions) RecordLogin(_ context.Context, username string) {
	f.recordedLogins = append(f.recordedLogins, username)
}

func (f *fakeSessions) RecordLogout(_ context.Context, username string) {
	f.recordedLogouts = append(f.recordedLogouts, username)
}

func (f *fakeSessions) Refresh(ctx context.Context, value string, sink auth.CookieSink) (string, error) {
	return f.refresh(ctx, value, sink)
}

func (f *fakeSessions) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	return f.authenticate(ctx, token)
}

type fakeAccounts struct {
	signup        func(ctx context.Context, req auth.SignupRequest) (*auth.User, error)
	getProfile    func(ctx context.Context, id ulid.ULID) (*auth.Profile, error)
	updateProfile func(ctx context.Context, caller auth.Identity, id ulid.ULID, req auth.UpdateProfileRequest) (*auth.User, error)
	withdraw      func(ctx context.Context, username, password string) (bool, error)
}

func (f *fakeAccounts) Signup(ctx context.Context, req auth.SignupRequest) (*auth.User, error) {
	return f.signup(ctx, req)
}

func (f *fakeAccounts) GetProfile(ctx context.Context, id ulid.ULID) (*auth.Profile, error) {
	return f.getProfile(ctx, id)
}

func (f *fakeAccounts) UpdateProfile(ctx context.Context, caller auth.Identity, id ulid.ULID, req auth.UpdateProfileRequest) (*auth.User, error) {
	return f.updateProfile(ctx, caller, id, req)
}

func (f *fakeAccounts) Withdraw(ctx context.Context, username, password string) (bool, error) {
	return f.withdraw(ctx, username, password)
}

type fakeAudit struct {
	list func(ctx context.Context, username string, limit int) ([]*auth.AuditEntry, error)
}

func (f *fakeAudit) List(ctx context.Context, username string, limit int) ([]*auth.AuditEntry, error) {
	return f.list(ctx, username, limit)
}

type observed struct {
	method, route string
	status        int
}

type fakeObserver struct {
	requests []observed
}

func (f *fakeObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	f.requests = append(f.requests, observed{method, route, status})
}

const validToken = "valid-access-token"

var (
	aliceID = ulid.MustParse("01HZX3K8J9Q2W5E7R4T6Y8V0AB")
	alice   = auth.NewIdentity(aliceID, "alice01")
)

type harness struct {
	sessions *fakeSessions
	accounts *fakeAccounts
	audit    *fakeAudit
	observer *fakeObserver
	router   *gin.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	catalog, err := i18n.Load()
	require.NoError(t, err)

	h := &harness{
		sessions: &fakeSessions{
			authenticate: func(_ context.Context, token string) (auth.Identity, error) {
				if token == validToken {
					return alice, nil
				}
				return auth.Identity{}, oops.Code(string(auth.KindUnauthenticated)).
					With("message_code", i18n.CodeUnauthenticated).
					Public("Authentication required.").
					Errorf("invalid access token")
			},
		},
		accounts: &fakeAccounts{},
		audit:    &fakeAudit{},
		observer: &fakeObserver{},
	}
	h.router, err = NewRouter(Config{
		Sessions: h.sessions,
		Accounts: h.accounts,
		Audit:    h.audit,
		Messages: catalog,
		Metrics:  h.observer,
	})
	require.NoError(t, err)
	return h
}

type request struct {
	method   string
	path     string
	body     any
	token    string
	cookies  []*http.Cookie
	language string
}

func (h *harness) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if r.body != nil {
		if raw, ok := r.body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(r.body))
		}
	}
	req := httptest.NewRequest(r.method, r.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	if r.language != "" {
		req.Header.Set("Accept-Language", r.language)
	}
	for _, ck := range r.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func failure(kind auth.Kind, code, message string) error {
	return oops.Code(string(kind)).With("message_code", code).Public(message).Errorf("%s", code)
}

func TestNewRouter_RequiresDependencies(t *testing.T) {
	catalog, err := i18n.Load()
	require.NoError(t, err)
	full := Config{Sessions: &fakeSessions{}, Accounts: &fakeAccounts{}, Audit: &fakeAudit{}, Messages: catalog}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"sessions", func(c *Config) { c.Sessions = nil }},
		{"accounts", func(c *Config) { c.Accounts = nil }},
		{"audit", func(c *Config) { c.Audit = nil }},
		{"messages", func(c *Config) { c.Messages = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := full
			tt.mutate(&cfg)
			_, err := NewRouter(cfg)
			assert.Error(t, err)
		})
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		kind auth.Kind
		want int
	}{
		{auth.KindNotFound, http.StatusNotFound},
		{auth.KindInvalidCredentials, http.StatusUnauthorized},
		{auth.KindInvalidState, http.StatusBadRequest},
		{auth.KindUnauthorized, http.StatusUnauthorized},
		{auth.KindInvalidArgument, http.StatusBadRequest},
		{auth.KindAlreadyExists, http.StatusConflict},
		{auth.KindUnauthenticated, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(failure(tt.kind, "x", "x")))
		})
	}
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(oops.Code("LOGIN_FAILED").Errorf("db down")))
}

func TestSignup(t *testing.T) {
	h := newHarness(t)
	created := &auth.User{ID: aliceID, Username: "alice01"}
	h.accounts.signup = func(_ context.Context, req auth.SignupRequest) (*auth.User, error) {
		if req.Username == "taken01" {
			return nil, failure(auth.KindAlreadyExists, i18n.CodeAlreadyExist, "Duplicate user exists.")
		}
		assert.Equal(t, "abcd123!", req.Password)
		assert.Equal(t, "hello", req.Intro)
		return created, nil
	}

	rec := h.do(t, request{method: http.MethodPost, path: "/users/signup", body: map[string]string{
		"username": "alice01", "password": "abcd123!", "nickname": "Alice", "email": "a@example.com", "intro": "hello",
	}})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, aliceID.String(), decodeBody(t, rec)["id"])

	rec = h.do(t, request{method: http.MethodPost, path: "/users/signup", body: map[string]string{"username": "taken01"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already.exist", decodeBody(t, rec)["code"])

	rec = h.do(t, request{method: http.MethodPost, path: "/users/signup", body: "{not json"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid.input", decodeBody(t, rec)["code"])
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	h.sessions.login = func(_ context.Context, username, password string, sink auth.CookieSink) (string, error) {
		if password != "abcd123!" {
			return "", failure(auth.KindInvalidCredentials, i18n.CodeInvalidPassword, "Invalid Password")
		}
		sink.SetCookie(auth.Cookie{Name: auth.RefreshTokenCookie, Value: "refresh", MaxAge: auth.RefreshTokenExpiry, HTTPOnly: true})
		sink.SetCookie(auth.Cookie{Name: auth.AccessTokenCookie, Value: "access", MaxAge: time.Hour, HTTPOnly: true})
		return "access", nil
	}

	t.Run("success sets cookies and records the login", func(t *testing.T) {
		rec := h.do(t, request{method: http.MethodPost, path: "/logs/login",
			body: map[string]string{"username": "alice01", "password": "abcd123!"}})

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "access", body["access_token"])
		assert.Equal(t, "Login succeeded.", body["message"])

		access := responseCookie(rec, auth.AccessTokenCookie)
		require.NotNil(t, access)
		assert.True(t, access.HttpOnly)
		assert.Equal(t, 3600, access.MaxAge)
		assert.Equal(t, "/", access.Path)
		refresh := responseCookie(rec, auth.RefreshTokenCookie)
		require.NotNil(t, refresh)
		assert.Equal(t, 14*24*3600, refresh.MaxAge)

		assert.Equal(t, []string{"alice01"}, h.sessions.recordedLogins)
	})

	t.Run("wrong password is localized", func(t *testing.T) {
		h.sessions.recordedLogins = nil
		rec := h.do(t, request{method: http.MethodPost, path: "/logs/login",
			body: map[string]string{"username": "alice01", "password": "nope"}})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid.password", decodeBody(t, rec)["code"])
		assert.Empty(t, h.sessions.recordedLogins)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := h.do(t, request{method: http.MethodPost, path: "/logs/login",
			body: map[string]string{"username": "alice01"}, language: "ko-KR"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "입력값이 올바르지 않습니다.", decodeBody(t, rec)["message"])
	})
}

func TestLogin_InternalErrorHidesDetails(t *testing.T) {
	h := newHarness(t)
	h.sessions.login = func(context.Context, string, string, auth.CookieSink) (string, error) {
		return "", oops.Code("LOGIN_FAILED").With("operation", "get user by username").Errorf("connection refused")
	}

	rec := h.do(t, request{method: http.MethodPost, path: "/logs/login",
		body: map[string]string{"username": "alice01", "password": "abcd123!"}})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "internal.error", body["code"])
	assert.Equal(t, "Internal server error.", body["message"])
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestLogout(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, request{method: http.MethodPost, path: "/logs/logout",
		cookies: []*http.Cookie{{Name: auth.AccessTokenCookie, Value: validToken}}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"alice01"}, h.sessions.recordedLogouts)
	cleared := responseCookie(rec, auth.AccessTokenCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestLogout_RequiresAuthentication(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, request{method: http.MethodPost, path: "/logs/logout", token: "forged"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthenticated", decodeBody(t, rec)["code"])
	assert.Empty(t, h.sessions.recordedLogouts)
}

func TestRefresh(t *testing.T) {
	h := newHarness(t)
	h.sessions.refresh = func(_ context.Context, value string, sink auth.CookieSink) (string, error) {
		if value != "live-refresh" {
			return "", failure(auth.KindUnauthenticated, i18n.CodeUnauthenticated, "Authentication required.")
		}
		sink.SetCookie(auth.Cookie{Name: auth.AccessTokenCookie, Value: "new-access", MaxAge: time.Hour, HTTPOnly: true})
		return "new-access", nil
	}

	rec := h.do(t, request{method: http.MethodPost, path: "/auth/refresh",
		cookies: []*http.Cookie{{Name: auth.RefreshTokenCookie, Value: "live-refresh"}}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new-access", decodeBody(t, rec)["access_token"])
	require.NotNil(t, responseCookie(rec, auth.AccessTokenCookie))

	rec = h.do(t, request{method: http.MethodPost, path: "/auth/refresh"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetProfile(t *testing.T) {
	h := newHarness(t)
	h.accounts.getProfile = func(_ context.Context, id ulid.ULID) (*auth.Profile, error) {
		if id != aliceID {
			return nil, failure(auth.KindNotFound, i18n.CodeUserNotFound, "User not found.")
		}
		return &auth.Profile{Username: "alice01", Nickname: "Alice", Email: "a@example.com"}, nil
	}

	rec := h.do(t, request{method: http.MethodGet, path: "/users/" + aliceID.String()})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "alice01", body["username"])
	assert.NotContains(t, body, "password_hash")

	rec = h.do(t, request{method: http.MethodGet, path: "/users/" + ulid.Make().String()})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, request{method: http.MethodGet, path: "/users/not-a-ulid"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProfile(t *testing.T) {
	h := newHarness(t)
	h.accounts.updateProfile = func(_ context.Context, caller auth.Identity, id ulid.ULID, req auth.UpdateProfileRequest) (*auth.User, error) {
		if !caller.Owns(id) {
			return nil, failure(auth.KindUnauthorized, i18n.CodeInvalidAuth, "Invalid Authority")
		}
		assert.Equal(t, "abcd123!", req.CurrentPassword)
		assert.Nil(t, req.NewPassword)
		require.NotNil(t, req.Nickname)
		return &auth.User{ID: id, Username: "alice01", Nickname: *req.Nickname}, nil
	}

	rec := h.do(t, request{method: http.MethodPut, path: "/users/" + aliceID.String(), token: validToken,
		body: map[string]string{"current_password": "abcd123!", "nickname": "Ally"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ally", decodeBody(t, rec)["nickname"])

	rec = h.do(t, request{method: http.MethodPut, path: "/users/" + ulid.Make().String(), token: validToken,
		body: map[string]string{"current_password": "abcd123!", "nickname": "Ally"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid.auth", decodeBody(t, rec)["code"])

	rec = h.do(t, request{method: http.MethodPut, path: "/users/" + aliceID.String(), token: validToken,
		body: map[string]string{"nickname": "Ally"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWithdraw(t *testing.T) {
	h := newHarness(t)
	h.accounts.withdraw = func(_ context.Context, username, password string) (bool, error) {
		assert.Equal(t, "alice01", username)
		return password == "abcd123!", nil
	}

	rec := h.do(t, request{method: http.MethodPatch, path: "/users/signout", token: validToken,
		body: map[string]string{"password": "wrong"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["withdrawn"])
	assert.Zero(t, h.sessions.logouts)

	rec = h.do(t, request{method: http.MethodPatch, path: "/users/signout", token: validToken,
		body: map[string]string{"password": "abcd123!"}, language: "ko"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["withdrawn"])
	assert.Equal(t, "탈퇴 성공", body["message"])
	assert.Equal(t, 1, h.sessions.logouts)
}

func TestListLogs(t *testing.T) {
	h := newHarness(t)
	var gotLimit int
	h.audit.list = func(_ context.Context, username string, limit int) ([]*auth.AuditEntry, error) {
		assert.Equal(t, "alice01", username)
		gotLimit = limit
		return []*auth.AuditEntry{{ID: ulid.Make(), Username: username, Action: auth.ActionLogin}}, nil
	}

	rec := h.do(t, request{method: http.MethodGet, path: "/users/me/logs?limit=5", token: validToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, gotLimit)
	logs, ok := decodeBody(t, rec)["logs"].([]any)
	require.True(t, ok)
	assert.Len(t, logs, 1)

	rec = h.do(t, request{method: http.MethodGet, path: "/users/me/logs?limit=lots", token: validToken})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, request{method: http.MethodGet, path: "/users/me/logs"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_RequestIDAndMetrics(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, request{method: http.MethodGet, path: "/nowhere"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/users/not-a-ulid", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	rec = httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	assert.Equal(t, "req-7", rec.Header().Get(RequestIDHeader))

	require.Len(t, h.observer.requests, 2)
	assert.Equal(t, observed{http.MethodGet, "unmatched", http.StatusNotFound}, h.observer.requests[0])
	assert.Equal(t, observed{http.MethodGet, "/users/:id", http.StatusBadRequest}, h.observer.requests[1])
}

func TestMiddleware_RecoversPanics(t *testing.T) {
	h := newHarness(t)
	h.accounts.getProfile = func(context.Context, ulid.ULID) (*auth.Profile, error) {
		panic("nil map")
	}

	rec := h.do(t, request{method: http.MethodGet, path: "/users/" + aliceID.String()})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal.error", decodeBody(t, rec)["code"])
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer abc"))
	assert.Empty(t, bearerToken("Basic abc"))
	assert.Empty(t, bearerToken("abc"))
}
