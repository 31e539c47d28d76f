package app_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/interviewhub/gateway/internal/app"
	"github.com/interviewhub/gateway/internal/auth"
	"github.com/interviewhub/gateway/internal/authz"
	"github.com/interviewhub/gateway/internal/backend"
	"github.com/interviewhub/gateway/internal/guard"
	"github.com/interviewhub/gateway/internal/nav"
	"github.com/interviewhub/gateway/internal/shared"
	_ "github.com/interviewhub/gateway/testing"
)

type stubUpstream struct {
	loginCalls int
}

func (s *stubUpstream) Login(ctx context.Context, username, password string) (backend.LoginResult, error) {
	s.loginCalls++
	return backend.LoginResult{Token: "tok-1", UserID: 7, Username: username, Role: "USER"}, nil
}

func (s *stubUpstream) Register(ctx context.Context, req backend.RegisterRequest) error {
	return nil
}

func (s *stubUpstream) UserInfo(ctx context.Context, token string) (backend.UserInfo, error) {
	return backend.UserInfo{}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T) (http.Handler, *shared.SessionManager, *shared.CSRFManager, *stubUpstream) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	logger := discardLogger()
	upstream := &stubUpstream{}

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         &app.Config{},
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Guard:          guard.New(logger, nil),
		AuthHandler:    auth.NewHandler(logger, auth.NewService(upstream, logger), sessionManager, csrfManager),
		NavHandler:     nav.NewHandler(logger, nav.NewResolver()),
	})
	return router, sessionManager, csrfManager, upstream
}

// seedSession commits an authenticated session and returns its cookie plus a
// CSRF token bound to it.
func seedSession(t *testing.T, manager *shared.SessionManager, csrf *shared.CSRFManager, role authz.Role) (*http.Cookie, string) {
	t.Helper()
	ctx := context.Background()
	sess, err := manager.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.SetAuth("tok-seed", 2, "bob", role)
	token, err := csrf.EnsureToken(ctx, sess)
	if err != nil {
		t.Fatalf("ensure token: %v", err)
	}
	res := httptest.NewRecorder()
	if err := manager.Commit(ctx, res, httptest.NewRequest(http.MethodGet, "/", nil), sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}
	for _, cookie := range res.Result().Cookies() {
		if cookie.Name == manager.CookieName() {
			return cookie, token
		}
	}
	t.Fatalf("no session cookie written")
	return nil, ""
}

func TestLoginIsGuestGated(t *testing.T) {
	router, manager, csrf, upstream := newTestRouter(t)
	cookie, token := seedSession(t, manager, csrf, authz.RoleUser)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"bob","password":"secretpw"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(shared.CSRFHeader, token)
	req.AddCookie(cookie)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusSeeOther {
		t.Fatalf("active session must be redirected, got %d: %s", res.Code, res.Body.String())
	}
	if loc := res.Header().Get("Location"); loc != guard.HomePath {
		t.Fatalf("expected redirect home, got %s", loc)
	}
	if upstream.loginCalls != 0 {
		t.Fatalf("credentials must not reach the backend for an active session")
	}
}

func TestAnonymousLoginPassesGuestGate(t *testing.T) {
	router, _, _, upstream := newTestRouter(t)

	// Bootstrap a session and token the way the SPA does.
	csrfRes := httptest.NewRecorder()
	router.ServeHTTP(csrfRes, httptest.NewRequest(http.MethodGet, "/auth/csrf", nil))
	if csrfRes.Code != http.StatusOK {
		t.Fatalf("csrf bootstrap failed: %d", csrfRes.Code)
	}
	var envelope struct {
		Data struct {
			CSRFToken string `json:"csrfToken"`
		} `json:"data"`
	}
	if err := json.Unmarshal(csrfRes.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode csrf envelope: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"bob","password":"secretpw"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(shared.CSRFHeader, envelope.Data.CSRFToken)
	for _, cookie := range csrfRes.Result().Cookies() {
		req.AddCookie(cookie)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("anonymous login must reach the handler, got %d: %s", res.Code, res.Body.String())
	}
	if upstream.loginCalls != 1 {
		t.Fatalf("expected one upstream login, got %d", upstream.loginCalls)
	}
}

func TestLogoutRequiresSession(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	csrfRes := httptest.NewRecorder()
	router.ServeHTTP(csrfRes, httptest.NewRequest(http.MethodGet, "/auth/csrf", nil))
	var envelope struct {
		Data struct {
			CSRFToken string `json:"csrfToken"`
		} `json:"data"`
	}
	if err := json.Unmarshal(csrfRes.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode csrf envelope: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set(shared.CSRFHeader, envelope.Data.CSRFToken)
	for _, cookie := range csrfRes.Result().Cookies() {
		req.AddCookie(cookie)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusSeeOther || res.Header().Get("Location") != guard.LoginPath {
		t.Fatalf("anonymous logout must redirect to login, got %d %s", res.Code, res.Header().Get("Location"))
	}
}
