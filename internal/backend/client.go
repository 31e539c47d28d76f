package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/interviewhub/gateway/internal/shared"
)

// Client wraps interactions with the upstream REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// envelope is the backend's response wrapper.
type envelope struct {
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Error represents a non-success envelope returned by the backend.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend: code %d: %s", e.Code, e.Message)
}

// do issues a request, decodes the envelope and unmarshals data into out when
// the call succeeds. Non-success envelopes map onto shared sentinel errors
// where the gateway distinguishes them; everything else surfaces as *Error so
// callers treat the operation as not applied.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return fmt.Errorf("backend: decode response: %w", err)
	}

	switch env.Code {
	case 200:
	case 401, 1001, 1003:
		return shared.ErrInvalidCredentials
	case 1005:
		return shared.ErrPendingActivation
	case 403, 3001:
		return shared.ErrForbidden
	case 404:
		return shared.ErrNotFound
	default:
		return &Error{Code: env.Code, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("backend: decode data: %w", err)
		}
	}
	return nil
}

// Login authenticates against POST /auth/login.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var result LoginResult
	payload := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", payload, &result); err != nil {
		return LoginResult{}, err
	}
	return result, nil
}

// Register creates a new account via POST /auth/register.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register", "", req, nil)
}

// UserInfo fetches the calling session's profile and granted permission
// codes via GET /user/info.
func (c *Client) UserInfo(ctx context.Context, token string) (UserInfo, error) {
	var info UserInfo
	if err := c.do(ctx, http.MethodGet, "/user/info", token, nil, &info); err != nil {
		return UserInfo{}, err
	}
	return info, nil
}

// ListUsers fetches the administrative user listing via GET /admin/users.
func (c *Client) ListUsers(ctx context.Context, token string, params ListUsersParams) (UserPage, error) {
	q := url.Values{}
	if params.Role != "" {
		q.Set("role", params.Role)
	}
	if params.Keyword != "" {
		q.Set("keyword", params.Keyword)
	}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.Size > 0 {
		q.Set("size", strconv.Itoa(params.Size))
	}
	path := "/admin/users"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var page UserPage
	if err := c.do(ctx, http.MethodGet, path, token, nil, &page); err != nil {
		return UserPage{}, err
	}
	return page, nil
}

// UpdateUserStatus toggles an account's ban status via PUT
// /admin/users/{id}/status.
func (c *Client) UpdateUserStatus(ctx context.Context, token string, userID int64, status int) error {
	path := fmt.Sprintf("/admin/users/%d/status", userID)
	return c.do(ctx, http.MethodPut, path, token, map[string]int{"status": status}, nil)
}

// GetUser fetches a single account via GET /super-admin/users/{id}.
func (c *Client) GetUser(ctx context.Context, token string, userID int64) (User, error) {
	var user User
	path := fmt.Sprintf("/super-admin/users/%d", userID)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// UpdateUser updates an account via PUT /super-admin/users/{id}.
func (c *Client) UpdateUser(ctx context.Context, token string, userID int64, fields map[string]any) error {
	path := fmt.Sprintf("/super-admin/users/%d", userID)
	return c.do(ctx, http.MethodPut, path, token, fields, nil)
}

// DeleteUser removes an account via DELETE /super-admin/users/{id}.
func (c *Client) DeleteUser(ctx context.Context, token string, userID int64) error {
	path := fmt.Sprintf("/super-admin/users/%d", userID)
	return c.do(ctx, http.MethodDelete, path, token, nil, nil)
}

// ResetPassword resets an account password via PUT
// /super-admin/users/{id}/password.
func (c *Client) ResetPassword(ctx context.Context, token string, userID int64, password string) error {
	path := fmt.Sprintf("/super-admin/users/%d/password", userID)
	return c.do(ctx, http.MethodPut, path, token, map[string]string{"password": password}, nil)
}

// ListPermissions fetches the full permission catalog via GET
// /super-admin/permissions.
func (c *Client) ListPermissions(ctx context.Context, token string) ([]PermissionDefinition, error) {
	var defs []PermissionDefinition
	if err := c.do(ctx, http.MethodGet, "/super-admin/permissions", token, nil, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// CreatePermission inserts a permission node via POST /super-admin/permissions.
func (c *Client) CreatePermission(ctx context.Context, token string, def PermissionDefinition) (PermissionDefinition, error) {
	var created PermissionDefinition
	if err := c.do(ctx, http.MethodPost, "/super-admin/permissions", token, def, &created); err != nil {
		return PermissionDefinition{}, err
	}
	return created, nil
}

// UpdatePermission updates a permission node via PUT
// /super-admin/permissions/{id}.
func (c *Client) UpdatePermission(ctx context.Context, token string, def PermissionDefinition) error {
	path := fmt.Sprintf("/super-admin/permissions/%d", def.ID)
	return c.do(ctx, http.MethodPut, path, token, def, nil)
}

// DeletePermission removes a permission node via DELETE
// /super-admin/permissions/{id}.
func (c *Client) DeletePermission(ctx context.Context, token string, id int64) error {
	path := fmt.Sprintf("/super-admin/permissions/%d", id)
	return c.do(ctx, http.MethodDelete, path, token, nil, nil)
}

// BatchDeletePermissions removes permission nodes via DELETE
// /super-admin/permissions/batch. Partial failure semantics are backend
// defined; a non-success envelope means nothing changed.
func (c *Client) BatchDeletePermissions(ctx context.Context, token string, ids []int64) error {
	return c.do(ctx, http.MethodDelete, "/super-admin/permissions/batch", token, map[string][]int64{"ids": ids}, nil)
}

// RolePermissions fetches the permission nodes bound to a role via GET
// /super-admin/permissions/role/{role}.
func (c *Client) RolePermissions(ctx context.Context, token, role string) ([]PermissionDefinition, error) {
	var defs []PermissionDefinition
	path := "/super-admin/permissions/role/" + url.PathEscape(role)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// SaveRolePermissions replaces the full permission set for a role via PUT
// /super-admin/permissions/role/{role}.
func (c *Client) SaveRolePermissions(ctx context.Context, token, role string, permissionIDs []int64) error {
	path := "/super-admin/permissions/role/" + url.PathEscape(role)
	return c.do(ctx, http.MethodPut, path, token, map[string][]int64{"permissionIds": permissionIDs}, nil)
}

// BindRolePermissions replaces the permission set for a role row via POST
// /super-admin/roles/{id}/permissions.
func (c *Client) BindRolePermissions(ctx context.Context, token string, roleID int64, permissionIDs []int64) error {
	path := fmt.Sprintf("/super-admin/roles/%d/permissions", roleID)
	return c.do(ctx, http.MethodPost, path, token, map[string][]int64{"permissionIds": permissionIDs}, nil)
}

// ListRoles fetches all role rows via GET /super-admin/roles.
func (c *Client) ListRoles(ctx context.Context, token string) ([]RoleDefinition, error) {
	var roles []RoleDefinition
	if err := c.do(ctx, http.MethodGet, "/super-admin/roles", token, nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// CreateRole inserts a role row via POST /super-admin/roles.
func (c *Client) CreateRole(ctx context.Context, token string, role RoleDefinition) (RoleDefinition, error) {
	var created RoleDefinition
	if err := c.do(ctx, http.MethodPost, "/super-admin/roles", token, role, &created); err != nil {
		return RoleDefinition{}, err
	}
	return created, nil
}

// UpdateRole updates a role row via PUT /super-admin/roles/{id}.
func (c *Client) UpdateRole(ctx context.Context, token string, role RoleDefinition) error {
	path := fmt.Sprintf("/super-admin/roles/%d", role.ID)
	return c.do(ctx, http.MethodPut, path, token, role, nil)
}

// DeleteRole removes a role row via DELETE /super-admin/roles/{id}.
func (c *Client) DeleteRole(ctx context.Context, token string, id int64) error {
	path := fmt.Sprintf("/super-admin/roles/%d", id)
	return c.do(ctx, http.MethodDelete, path, token, nil, nil)
}

// BatchDeleteRoles removes role rows via DELETE /super-admin/roles/batch.
func (c *Client) BatchDeleteRoles(ctx context.Context, token string, ids []int64) error {
	return c.do(ctx, http.MethodDelete, "/super-admin/roles/batch", token, map[string][]int64{"ids": ids}, nil)
}
