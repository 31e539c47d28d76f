package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/interviewhub/gateway/internal/authz"
	"github.com/interviewhub/gateway/internal/backend"
	"github.com/interviewhub/gateway/internal/nav"
	"github.com/interviewhub/gateway/internal/shared"
)

const catalogCacheKey = "permcatalog"

// ErrSystemRole indicates an attempt to delete one of the fixed system
// roles.
var ErrSystemRole = errors.New("admin: system roles cannot be deleted")

// ErrHasChildren indicates a delete attempt on a permission node that still
// has children. Deleting would orphan them, so the gateway forbids it.
var ErrHasChildren = errors.New("admin: permission node has children")

// Upstream is the slice of the backend client the administration workflows
// depend on.
type Upstream interface {
	ListUsers(ctx context.Context, token string, params backend.ListUsersParams) (backend.UserPage, error)
	GetUser(ctx context.Context, token string, userID int64) (backend.User, error)
	UpdateUser(ctx context.Context, token string, userID int64, fields map[string]any) error
	UpdateUserStatus(ctx context.Context, token string, userID int64, status int) error
	DeleteUser(ctx context.Context, token string, userID int64) error
	ResetPassword(ctx context.Context, token string, userID int64, password string) error

	ListPermissions(ctx context.Context, token string) ([]backend.PermissionDefinition, error)
	CreatePermission(ctx context.Context, token string, def backend.PermissionDefinition) (backend.PermissionDefinition, error)
	UpdatePermission(ctx context.Context, token string, def backend.PermissionDefinition) error
	DeletePermission(ctx context.Context, token string, id int64) error
	BatchDeletePermissions(ctx context.Context, token string, ids []int64) error

	RolePermissions(ctx context.Context, token, role string) ([]backend.PermissionDefinition, error)
	SaveRolePermissions(ctx context.Context, token, role string, permissionIDs []int64) error
	BindRolePermissions(ctx context.Context, token string, roleID int64, permissionIDs []int64) error

	ListRoles(ctx context.Context, token string) ([]backend.RoleDefinition, error)
	CreateRole(ctx context.Context, token string, role backend.RoleDefinition) (backend.RoleDefinition, error)
	UpdateRole(ctx context.Context, token string, role backend.RoleDefinition) error
	DeleteRole(ctx context.Context, token string, id int64) error
	BatchDeleteRoles(ctx context.Context, token string, ids []int64) error
}

// RefreshEnqueuer schedules an asynchronous catalog refresh after a
// mutation.
type RefreshEnqueuer interface {
	EnqueueCatalogRefresh(ctx context.Context) error
}

// Service orchestrates administration workflows and the cached permission
// catalog.
type Service struct {
	upstream Upstream
	cache    *redis.Client
	cacheTTL time.Duration
	enqueue  RefreshEnqueuer
	resolver *nav.Resolver
	logger   *slog.Logger
	group    singleflight.Group
}

// NewService constructs a Service.
func NewService(upstream Upstream, cache *redis.Client, cacheTTL time.Duration, enqueue RefreshEnqueuer, resolver *nav.Resolver, logger *slog.Logger) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &Service{
		upstream: upstream,
		cache:    cache,
		cacheTTL: cacheTTL,
		enqueue:  enqueue,
		resolver: resolver,
		logger:   logger,
	}
}

// Catalog returns the permission catalog, served from the Redis cache when
// warm. Concurrent misses collapse into one upstream fetch, and the fetch is
// detached from the request context so a disconnecting client does not
// abandon a fill other requests are waiting on.
func (s *Service) Catalog(ctx context.Context, token string) ([]backend.PermissionDefinition, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, catalogCacheKey).Bytes(); err == nil {
			var defs []backend.PermissionDefinition
			if err := json.Unmarshal(data, &defs); err == nil {
				return defs, nil
			}
		}
	}

	fill := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(catalogCacheKey, func() (any, error) {
		return s.refresh(fill, token)
	})
	if err != nil {
		return nil, err
	}
	defs, ok := v.([]backend.PermissionDefinition)
	if !ok {
		return nil, fmt.Errorf("admin: unexpected catalog type %T", v)
	}
	return defs, nil
}

// RefreshCatalog fetches the catalog upstream and rewrites the cache.
func (s *Service) RefreshCatalog(ctx context.Context, token string) error {
	_, err := s.refresh(ctx, token)
	return err
}

func (s *Service) refresh(ctx context.Context, token string) ([]backend.PermissionDefinition, error) {
	defs, err := s.upstream.ListPermissions(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		data, err := json.Marshal(defs)
		if err == nil {
			if err := s.cache.Set(ctx, catalogCacheKey, data, s.cacheTTL).Err(); err != nil && s.logger != nil {
				s.logger.Warn("cache permission catalog", slog.Any("error", err))
			}
		}
	}
	return defs, nil
}

func (s *Service) invalidateCatalog(ctx context.Context) {
	if s.cache != nil {
		if err := s.cache.Del(ctx, catalogCacheKey).Err(); err != nil && s.logger != nil {
			s.logger.Warn("invalidate permission catalog", slog.Any("error", err))
		}
	}
	if s.enqueue != nil {
		if err := s.enqueue.EnqueueCatalogRefresh(ctx); err != nil && s.logger != nil {
			s.logger.Warn("enqueue catalog refresh", slog.Any("error", err))
		}
	}
}

// User administration.

// ListUsers forwards the user listing with pagination metadata.
func (s *Service) ListUsers(ctx context.Context, actor shared.Auth, params backend.ListUsersParams) (backend.UserPage, shared.Pagination, error) {
	page, err := s.upstream.ListUsers(ctx, actor.Token, params)
	if err != nil {
		return backend.UserPage{}, shared.Pagination{}, err
	}
	return page, shared.NewPagination(page.Page, page.Size, page.Total), nil
}

// GetUser fetches a single account.
func (s *Service) GetUser(ctx context.Context, actor shared.Auth, targetID int64) (backend.User, error) {
	return s.upstream.GetUser(ctx, actor.Token, targetID)
}

// UpdateUserStatus bans or unbans an account. targetRole comes from the
// caller's listing row: an ADMIN token cannot read the super-admin user
// endpoint, so the real role is not verifiable here and the backend stays
// authoritative.
func (s *Service) UpdateUserStatus(ctx context.Context, actor shared.Auth, targetID int64, targetRole authz.Role, status int) error {
	if !s.resolver.CanActOnUser(actor, targetRole, targetID, nav.ActionBan) {
		return shared.ErrForbidden
	}
	return s.upstream.UpdateUserStatus(ctx, actor.Token, targetID, status)
}

// ChangeUserRole promotes or demotes an account between USER and ADMIN. The
// target's current role is read from the backend rather than the request so a
// forged body cannot downgrade the protection checks.
func (s *Service) ChangeUserRole(ctx context.Context, actor shared.Auth, targetID int64, newRole authz.Role) error {
	target, err := s.upstream.GetUser(ctx, actor.Token, targetID)
	if err != nil {
		return err
	}
	targetRole := authz.ParseRole(target.Role)
	action := nav.ActionPromote
	if newRole.Level() < targetRole.Level() {
		action = nav.ActionDemote
	}
	if !s.resolver.CanActOnUser(actor, targetRole, targetID, action) {
		return shared.ErrForbidden
	}
	return s.upstream.UpdateUser(ctx, actor.Token, targetID, map[string]any{"role": string(newRole)})
}

// DeleteUser removes an account.
func (s *Service) DeleteUser(ctx context.Context, actor shared.Auth, targetID int64) error {
	target, err := s.upstream.GetUser(ctx, actor.Token, targetID)
	if err != nil {
		return err
	}
	if !s.resolver.CanActOnUser(actor, authz.ParseRole(target.Role), targetID, nav.ActionDelete) {
		return shared.ErrForbidden
	}
	return s.upstream.DeleteUser(ctx, actor.Token, targetID)
}

// ResetPassword resets an account password.
func (s *Service) ResetPassword(ctx context.Context, actor shared.Auth, targetID int64, password string) error {
	target, err := s.upstream.GetUser(ctx, actor.Token, targetID)
	if err != nil {
		return err
	}
	if !s.resolver.CanActOnUser(actor, authz.ParseRole(target.Role), targetID, nav.ActionResetPassword) {
		return shared.ErrForbidden
	}
	return s.upstream.ResetPassword(ctx, actor.Token, targetID, password)
}

// Permission administration.

// CreatePermission inserts a permission node and refreshes the catalog.
func (s *Service) CreatePermission(ctx context.Context, actor shared.Auth, def backend.PermissionDefinition) (backend.PermissionDefinition, error) {
	created, err := s.upstream.CreatePermission(ctx, actor.Token, def)
	if err != nil {
		return backend.PermissionDefinition{}, err
	}
	s.invalidateCatalog(ctx)
	return created, nil
}

// UpdatePermission updates a permission node and refreshes the catalog.
func (s *Service) UpdatePermission(ctx context.Context, actor shared.Auth, def backend.PermissionDefinition) error {
	if err := s.upstream.UpdatePermission(ctx, actor.Token, def); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

// DeletePermission removes a single node. Deleting a node that still has
// children is forbidden so the tree never silently orphans entries.
func (s *Service) DeletePermission(ctx context.Context, actor shared.Auth, id int64) error {
	defs, err := s.Catalog(ctx, actor.Token)
	if err != nil {
		return err
	}
	if HasChildren(defs, id) {
		return ErrHasChildren
	}
	if err := s.upstream.DeletePermission(ctx, actor.Token, id); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

// BatchDeletePermissions issues one batched delete. A non-success response
// means nothing changed; the cached catalog is only dropped after success.
func (s *Service) BatchDeletePermissions(ctx context.Context, actor shared.Auth, ids []int64) error {
	defs, err := s.Catalog(ctx, actor.Token)
	if err != nil {
		return err
	}
	deleting := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		deleting[id] = struct{}{}
	}
	for _, id := range ids {
		for _, def := range defs {
			if def.ParentID != id {
				continue
			}
			if _, ok := deleting[def.ID]; !ok {
				return ErrHasChildren
			}
		}
	}
	if err := s.upstream.BatchDeletePermissions(ctx, actor.Token, ids); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

// ApplyTemplate computes the node-id selection a preset template yields over
// the current catalog. The selection replaces whatever was selected before.
func (s *Service) ApplyTemplate(ctx context.Context, actor shared.Auth, name string) ([]int64, error) {
	tpl, ok := TemplateByName(name)
	if !ok {
		return nil, shared.ErrNotFound
	}
	defs, err := s.Catalog(ctx, actor.Token)
	if err != nil {
		return nil, err
	}
	return tpl.Apply(defs), nil
}

// RolePermissions returns the nodes currently bound to a role.
func (s *Service) RolePermissions(ctx context.Context, actor shared.Auth, role string) ([]backend.PermissionDefinition, error) {
	return s.upstream.RolePermissions(ctx, actor.Token, role)
}

// SaveRolePermissions replaces the full permission set for a role. The
// binding is never incremental: the ids slice is the complete desired set.
func (s *Service) SaveRolePermissions(ctx context.Context, actor shared.Auth, role string, ids []int64) error {
	return s.upstream.SaveRolePermissions(ctx, actor.Token, role, ids)
}

// BindRolePermissions replaces the permission set for a role row by id.
func (s *Service) BindRolePermissions(ctx context.Context, actor shared.Auth, roleID int64, ids []int64) error {
	return s.upstream.BindRolePermissions(ctx, actor.Token, roleID, ids)
}

// Role administration.

// ListRoles returns all role rows.
func (s *Service) ListRoles(ctx context.Context, actor shared.Auth) ([]backend.RoleDefinition, error) {
	return s.upstream.ListRoles(ctx, actor.Token)
}

// CreateRole inserts a role row.
func (s *Service) CreateRole(ctx context.Context, actor shared.Auth, role backend.RoleDefinition) (backend.RoleDefinition, error) {
	return s.upstream.CreateRole(ctx, actor.Token, role)
}

// UpdateRole updates a role row.
func (s *Service) UpdateRole(ctx context.Context, actor shared.Auth, role backend.RoleDefinition) error {
	return s.upstream.UpdateRole(ctx, actor.Token, role)
}

// DeleteRole removes a role row. System roles are blocked here as a
// courtesy; the backend rejects them authoritatively.
func (s *Service) DeleteRole(ctx context.Context, actor shared.Auth, id int64) error {
	roles, err := s.upstream.ListRoles(ctx, actor.Token)
	if err != nil {
		return err
	}
	for _, role := range roles {
		if role.ID == id && authz.ParseRole(role.RoleCode).System() {
			return ErrSystemRole
		}
	}
	return s.upstream.DeleteRole(ctx, actor.Token, id)
}

// BatchDeleteRoles removes role rows. A batch containing a system role is
// rejected whole: the client must never optimistically assume partial
// success.
func (s *Service) BatchDeleteRoles(ctx context.Context, actor shared.Auth, ids []int64) error {
	roles, err := s.upstream.ListRoles(ctx, actor.Token)
	if err != nil {
		return err
	}
	byID := make(map[int64]backend.RoleDefinition, len(roles))
	for _, role := range roles {
		byID[role.ID] = role
	}
	for _, id := range ids {
		if role, ok := byID[id]; ok && authz.ParseRole(role.RoleCode).System() {
			return ErrSystemRole
		}
	}
	return s.upstream.BatchDeleteRoles(ctx, actor.Token, ids)
}
