package admin_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/interviewhub/gateway/internal/admin"
	"github.com/interviewhub/gateway/internal/authz"
	"github.com/interviewhub/gateway/internal/backend"
	"github.com/interviewhub/gateway/internal/observability"
	"github.com/interviewhub/gateway/internal/shared"
)

func mountSuperAdmin(t *testing.T, upstream *stubUpstream) (chi.Router, *shared.Session) {
	t.Helper()
	svc, _, _ := newService(t, upstream)
	handler := admin.NewHandler(nil, svc, nil)
	router := chi.NewRouter()
	router.Route("/super-admin", handler.MountSuperAdminRoutes)

	sess := &shared.Session{}
	actor := superAdminActor()
	sess.SetAuth(actor.Token, actor.UserID, actor.Username, actor.Role)
	return router, sess
}

func do(router chi.Router, sess *shared.Session, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func envelopeCode(t *testing.T, res *httptest.ResponseRecorder) int {
	t.Helper()
	var envelope struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, res.Body.String())
	}
	return envelope.Code
}

func TestBatchDeleteRolesRejectsSystemRoleOverHTTP(t *testing.T) {
	upstream := &stubUpstream{roles: []backend.RoleDefinition{
		{ID: 1, RoleCode: "ADMIN", RoleName: "Admin"},
		{ID: 2, RoleCode: "REVIEWER", RoleName: "Reviewer"},
	}}
	router, sess := mountSuperAdmin(t, upstream)

	res := do(router, sess, http.MethodDelete, "/super-admin/roles/batch", `{"ids":[1,2]}`)

	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", res.Code, res.Body.String())
	}
	if code := envelopeCode(t, res); code != 403 {
		t.Fatalf("expected envelope code 403, got %d", code)
	}
	if len(upstream.deletedRoles) != 0 {
		t.Fatalf("whole batch must be rejected, deleted: %v", upstream.deletedRoles)
	}
}

func TestApplyTemplateOverHTTP(t *testing.T) {
	upstream := &stubUpstream{perms: sampleCatalog()}
	router, sess := mountSuperAdmin(t, upstream)

	res := do(router, sess, http.MethodPost, "/super-admin/permissions/templates/user/apply", "")

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var envelope struct {
		Data struct {
			PermissionIDs []int64 `json:"permissionIds"`
		} `json:"data"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data.PermissionIDs) == 0 {
		t.Fatalf("template application returned no selection")
	}
}

func TestDeletePermissionWithChildrenOverHTTP(t *testing.T) {
	upstream := &stubUpstream{perms: sampleCatalog()}
	router, sess := mountSuperAdmin(t, upstream)

	res := do(router, sess, http.MethodDelete, "/super-admin/permissions/1", "")

	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", res.Code, res.Body.String())
	}
}

func TestSelfBanOverHTTPCountsDenial(t *testing.T) {
	upstream := &stubUpstream{users: map[int64]backend.User{5: {ID: 5, Role: "ADMIN"}}}
	svc, _, _ := newService(t, upstream)
	metrics := observability.NewMetrics()
	handler := admin.NewHandler(nil, svc, metrics)
	router := chi.NewRouter()
	router.Route("/admin", handler.MountAdminRoutes)

	sess := &shared.Session{}
	sess.SetAuth("tok", 5, "self", authz.RoleAdmin)
	sess.SetPermissions([]string{"system:user:ban:button"})

	res := do(router, sess, http.MethodPut, "/admin/users/5/status", `{"status":0,"targetRole":"ADMIN"}`)

	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", res.Code, res.Body.String())
	}
	if len(upstream.statusUpdates) != 0 {
		t.Fatalf("upstream must not see the rejected update: %v", upstream.statusUpdates)
	}

	scrape := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(scrape.Body.String(), `gateway_authz_denials_total{surface="admin"} 1`) {
		t.Fatalf("denial not recorded:\n%s", scrape.Body.String())
	}
}

func TestRoutesRequireSessionActor(t *testing.T) {
	upstream := &stubUpstream{perms: sampleCatalog()}
	svc, _, _ := newService(t, upstream)
	handler := admin.NewHandler(nil, svc, nil)
	router := chi.NewRouter()
	router.Route("/super-admin", handler.MountSuperAdminRoutes)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/super-admin/permissions", nil))

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", res.Code)
	}
}
