package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/interviewhub/gateway/internal/authz"
	"github.com/interviewhub/gateway/internal/backend"
	"github.com/interviewhub/gateway/internal/observability"
	"github.com/interviewhub/gateway/internal/platform/httpx"
	"github.com/interviewhub/gateway/internal/shared"
)

// Handler wires the administration HTTP surface.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	metrics   *observability.Metrics
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, metrics: metrics, validator: validator.New()}
}

// MountAdminRoutes registers the routes available to admin-tier sessions.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/users", h.listUsers)
	r.Put("/users/{id}/status", h.updateUserStatus)
}

// MountSuperAdminRoutes registers the super-admin-only routes.
func (h *Handler) MountSuperAdminRoutes(r chi.Router) {
	r.Get("/permissions", h.listPermissions)
	r.Get("/permissions/tree", h.permissionTree)
	r.Post("/permissions", h.createPermission)
	r.Put("/permissions/{id}", h.updatePermission)
	r.Delete("/permissions/{id}", h.deletePermission)
	r.Delete("/permissions/batch", h.batchDeletePermissions)
	r.Post("/permissions/templates/{name}/apply", h.applyTemplate)
	r.Get("/permissions/role/{role}", h.rolePermissions)
	r.Put("/permissions/role/{role}", h.saveRolePermissions)

	r.Get("/roles", h.listRoles)
	r.Post("/roles", h.createRole)
	r.Put("/roles/{id}", h.updateRole)
	r.Delete("/roles/{id}", h.deleteRole)
	r.Delete("/roles/batch", h.batchDeleteRoles)
	r.Post("/roles/{id}/permissions", h.bindRolePermissions)

	r.Get("/users/{id}", h.getUser)
	r.Put("/users/{id}", h.changeUserRole)
	r.Delete("/users/{id}", h.deleteUser)
	r.Put("/users/{id}/password", h.resetPassword)
	r.Put("/users/{id}/status", h.updateUserStatus)
}

func (h *Handler) actor(r *http.Request) (shared.Auth, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return shared.Auth{}, false
	}
	auth := sess.Auth()
	return auth, auth.IsAuthenticated
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSystemRole):
		httpx.Fail(w, httpx.CodeForbidden, "system roles cannot be deleted")
	case errors.Is(err, ErrHasChildren):
		httpx.Fail(w, httpx.CodeForbidden, "permission node still has children")
	default:
		var upstreamErr *backend.Error
		if errors.As(err, &upstreamErr) {
			httpx.Fail(w, upstreamErr.Code, upstreamErr.Message)
			return
		}
		if errors.Is(err, shared.ErrForbidden) {
			h.metrics.RecordDenial("admin")
		}
		httpx.RespondError(w, err)
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// User administration handlers.

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		httpx.Fail(w, httpx.CodeUnauthorized, "not authenticated")
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	users, pagination, err := h.service.ListUsers(r.Context(), actor, backend.ListUsersParams{
		Role:    q.Get("role"),
		Keyword: q.Get("keyword"),
		Page:    page,
		Size:    size,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"records": users.Records, "pagination": pagination})
}

type statusRequest struct {
	Status     int    `json:"status" validate:"oneof=0 1"`
	TargetRole string `json:"targetRole" validate:"required"`
}

func (h *Handler) updateUserStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		httpx.Fail(w, httpx.CodeUnauthorized, "not authenticated")
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "status and targetRole are required")
		return
	}
	if err := h.service.UpdateUserStatus(r.Context(), actor, id, authz.ParseRole(req.TargetRole), req.Status); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		httpx.Fail(w, httpx.CodeUnauthorized, "not authenticated")
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid user id")
		return
	}
	user, err := h.service.GetUser(r.Context(), actor, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, user)
}

type roleChangeRequest struct {
	Role string `json:"role" validate:"required"`
}

func (h *Handler) changeUserRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		httpx.Fail(w, httpx.CodeUnauthorized, "not authenticated")
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req roleChangeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "role is required")
		return
	}
	newRole := authz.ParseRole(req.Role)
	if newRole != authz.RoleUser && newRole != authz.RoleAdmin {
		httpx.Fail(w, http.StatusBadRequest, "role must be USER or ADMIN")
		return
	}
	if err := h.service.ChangeUserRole(r.Context(), actor, id, newRole); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		httpx.Fail(w, httpx.CodeUnauthorized, "not authenticated")
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.service.DeleteUser(r.Context(), actor, id); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

type passwordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		httpx.Fail(w, httpx.CodeUnauthorized, "not authenticated")
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req passwordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	if err := h.service.ResetPassword(r.Context(), actor, id, req.Password); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

// Permission administration handlers.

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		httpx.Fail(w, httpx.CodeUnauthorized, "not authenticated")
		return
	}
	defs, err := h.service.Catalog(r.Context(), actor.Token)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, defs)
}

func (h *Handler) permissionTree(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		httpx.Fail(w, httpx.CodeUnauthorized, "not authenticated")
		return
	}
	defs, err := h.service.Catalog(r.Context(), actor.Token)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, BuildTree(defs))
}

type permissionRequest struct {
	PermCode      string `json:"permCode" validate:"required"`
	PermName      string `json:"permName" validate:"required"`
	PermType      int    `json:"permType" validate:"oneof=1 2 3"`
	ParentID      int64  `json:"parentId"`
	RoutePath     string `json:"routePath"`
	InterfacePath string `json:"interfacePath"`
	RequestMethod string `json:"requestMethod"`
	Description   string `json:"description"`
	Status        int    `json:"status" validate:"oneof=0 1"`
}

func (r permissionRequest) definition(id int64) backend.PermissionDefinition {
	return backend.PermissionDefinition{
		ID:            id,
		PermCode:      r.PermCode,
		PermName:      r.PermName,
		PermType:      r.PermType,
		ParentID:      r.ParentID,
		RoutePath:     r.RoutePath,
		InterfacePath: r.InterfacePath,
		RequestMethod: r.RequestMethod,
		Description:   r.Description,
		Status:        r.Status,
	}
}

func (h *Handler) createPermission(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		httpx.Fail(w, httpx.CodeUnauthorized, "not authenticated")
		return
	}
	var req permissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "permCode, permName and a valid permType are required")
		return
	}
	created, err := h.service.CreatePermission(r.Context(), actor, req.definition(0))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, created)
}

func (h *Handler) updatePermission(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		httpx.Fail(w, httpx.CodeUnauthorized, "not authenticated")
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid permission id")
		return
	}
	var req permissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "permCode, permName and a valid permType are required")
		return
	}
	if err := h.service.UpdatePermission(r.Context(), actor, req.definition(id)); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

func (h *Handler) deletePermission(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		httpx.Fail(w, httpx.CodeUnauthorized, "not authenticated")
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid permission id")
		return
	}
	if err := h.service.DeletePermission(r.Context(), actor, id); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

type batchRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1"`
}

func (h *Handler) batchDeletePermissions(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		httpx.Fail(w, httpx.CodeUnauthorized, "not authenticated")
		return
	}
	var req batchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "ids are required")
		return
	}
	if err := h.service.BatchDeletePermissions(r.Context(), actor, req.IDs); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

func (h *Handler) applyTemplate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		httpx.Fail(w, httpx.CodeUnauthorized, "not authenticated")
		return
	}
	ids, err := h.service.ApplyTemplate(r.Context(), actor, chi.URLParam(r, "name"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"permissionIds": ids})
}

func (h *Handler) rolePermissions(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		httpx.Fail(w, httpx.CodeUnauthorized, "not authenticated")
		return
	}
	defs, err := h.service.RolePermissions(r.Context(), actor, chi.URLParam(r, "role"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, defs)
}

type bindingRequest struct {
	PermissionIDs []int64 `json:"permissionIds" validate:"required"`
}

func (h *Handler) saveRolePermissions(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		httpx.Fail(w, httpx.CodeUnauthorized, "not authenticated")
		return
	}
	var req bindingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "permissionIds are required")
		return
	}
	if err := h.service.SaveRolePermissions(r.Context(), actor, chi.URLParam(r, "role"), req.PermissionIDs); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

func (h *Handler) bindRolePermissions(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		httpx.Fail(w, httpx.CodeUnauthorized, "not authenticated")
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid role id")
		return
	}
	var req bindingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "permissionIds are required")
		return
	}
	if err := h.service.BindRolePermissions(r.Context(), actor, id, req.PermissionIDs); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

// Role administration handlers.

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		httpx.Fail(w, httpx.CodeUnauthorized, "not authenticated")
		return
	}
	roles, err := h.service.ListRoles(r.Context(), actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, roles)
}

type roleRequest struct {
	RoleCode    string `json:"roleCode" validate:"required"`
	RoleName    string `json:"roleName" validate:"required"`
	Description string `json:"description"`
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		httpx.Fail(w, httpx.CodeUnauthorized, "not authenticated")
		return
	}
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "roleCode and roleName are required")
		return
	}
	created, err := h.service.CreateRole(r.Context(), actor, backend.RoleDefinition{
		RoleCode:    req.RoleCode,
		RoleName:    req.RoleName,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, created)
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		httpx.Fail(w, httpx.CodeUnauthorized, "not authenticated")
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid role id")
		return
	}
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "roleCode and roleName are required")
		return
	}
	if err := h.service.UpdateRole(r.Context(), actor, backend.RoleDefinition{
		ID:          id,
		RoleCode:    req.RoleCode,
		RoleName:    req.RoleName,
		Description: req.Description,
	}); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		httpx.Fail(w, httpx.CodeUnauthorized, "not authenticated")
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid role id")
		return
	}
	if err := h.service.DeleteRole(r.Context(), actor, id); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

func (h *Handler) batchDeleteRoles(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		httpx.Fail(w, httpx.CodeUnauthorized, "not authenticated")
		return
	}
	var req batchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "ids are required")
		return
	}
	if err := h.service.BatchDeleteRoles(r.Context(), actor, req.IDs); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, nil)
}
