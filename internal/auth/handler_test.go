package auth_test

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

	"github.com/interviewhub/gateway/internal/auth"
	"github.com/interviewhub/gateway/internal/authz"
	"github.com/interviewhub/gateway/internal/backend"
	"github.com/interviewhub/gateway/internal/shared"
	_ "github.com/interviewhub/gateway/testing"
)

type stubUpstream struct {
	login     backend.LoginResult
	loginErr  error
	info      backend.UserInfo
	infoErr   error
	registers int
}

func (s *stubUpstream) Login(ctx context.Context, username, password string) (backend.LoginResult, error) {
	if s.loginErr != nil {
		return backend.LoginResult{}, s.loginErr
	}
	return s.login, nil
}

func (s *stubUpstream) Register(ctx context.Context, req backend.RegisterRequest) error {
	s.registers++
	return nil
}

func (s *stubUpstream) UserInfo(ctx context.Context, token string) (backend.UserInfo, error) {
	if s.infoErr != nil {
		return backend.UserInfo{}, s.infoErr
	}
	return s.info, nil
}

func newAuthHandler(t *testing.T, upstream *stubUpstream) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	handler := auth.NewHandler(discardLogger(), auth.NewService(upstream, discardLogger()), sessionManager, csrfManager)
	return handler, sessionManager
}

func loginRequest(t *testing.T, manager *shared.SessionManager, body string) (*http.Request, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	sess, err := manager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess)), sess
}

func TestLoginPopulatesSession(t *testing.T) {
	upstream := &stubUpstream{
		login: backend.LoginResult{Token: "tok-1", UserID: 7, Username: "alice", Role: "ADMIN"},
		info: backend.UserInfo{Permissions: backend.Permissions{
			PermissionCodes: []string{"system:menu:question-review", "button.user.edit"},
		}},
	}
	handler, manager := newAuthHandler(t, upstream)

	req, sess := loginRequest(t, manager, `{"username":"alice","password":"secretpw"}`)
	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	authState := sess.Auth()
	if !authState.IsAuthenticated || authState.Token != "tok-1" || authState.Role != authz.RoleAdmin {
		t.Fatalf("session not populated: %+v", authState)
	}
	if !sess.Evaluator().Has("button:user:edit") {
		t.Fatalf("permissions not attached to session")
	}

	var envelope struct {
		Code int `json:"code"`
		Data struct {
			Username    string   `json:"username"`
			Permissions []string `json:"permissions"`
		} `json:"data"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Code != 200 || envelope.Data.Username != "alice" || len(envelope.Data.Permissions) != 2 {
		t.Fatalf("unexpected payload: %+v", envelope)
	}
}

func TestLoginPermissionFetchFailureDegrades(t *testing.T) {
	upstream := &stubUpstream{
		login:   backend.LoginResult{Token: "tok-1", UserID: 7, Username: "alice", Role: "USER"},
		infoErr: shared.ErrForbidden,
	}
	handler, manager := newAuthHandler(t, upstream)

	req, sess := loginRequest(t, manager, `{"username":"alice","password":"secretpw"}`)
	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("login must still succeed, got %d", res.Code)
	}
	if !sess.Auth().IsAuthenticated {
		t.Fatalf("session must authenticate despite the failed permission fetch")
	}
	if sess.Evaluator().Has("anything") {
		t.Fatalf("failed fetch must leave an empty grant set")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	upstream := &stubUpstream{loginErr: shared.ErrInvalidCredentials}
	handler, manager := newAuthHandler(t, upstream)

	req, sess := loginRequest(t, manager, `{"username":"alice","password":"wrong"}`)
	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if sess.Auth().IsAuthenticated {
		t.Fatalf("failed login must not authenticate the session")
	}
}

func TestLoginPendingActivationKeepsDistinctCode(t *testing.T) {
	upstream := &stubUpstream{loginErr: shared.ErrPendingActivation}
	handler, manager := newAuthHandler(t, upstream)

	req, _ := loginRequest(t, manager, `{"username":"alice","password":"secretpw"}`)
	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)

	// Domain code 1005 travels inside an HTTP 200 envelope.
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 carrier, got %d", res.Code)
	}
	var envelope struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Code != 1005 {
		t.Fatalf("expected envelope code 1005, got %d", envelope.Code)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	upstream := &stubUpstream{
		login: backend.LoginResult{Token: "tok-1", UserID: 7, Username: "alice", Role: "USER"},
	}
	handler, manager := newAuthHandler(t, upstream)

	req, sess := loginRequest(t, manager, `{"username":"alice","password":"secretpw"}`)
	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)
	if !sess.Auth().IsAuthenticated {
		t.Fatalf("precondition: login failed")
	}

	outReq := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	outReq = outReq.WithContext(shared.ContextWithSession(outReq.Context(), sess))
	outRes := httptest.NewRecorder()
	handler.HandleLogoutForTest(outRes, outReq)

	if outRes.Code != http.StatusOK {
		t.Fatalf("logout: %d", outRes.Code)
	}
	if sess.Auth().IsAuthenticated {
		t.Fatalf("logout must clear the identity")
	}
	if sess.View().Authenticated() {
		t.Fatalf("logout must reset the view")
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
