// Package backend is the typed client for the upstream interview-platform
// REST API. The backend owns all persistence and business rules; this
// package treats its endpoints as opaque request/response contracts and maps
// the response envelope onto domain errors.
package backend

// Permission definition kinds, as stored by the backend.
const (
	PermTypeMenu   = 1
	PermTypeButton = 2
	PermTypeAPI    = 3
)

// Permission definition statuses.
const (
	StatusActive   = 1
	StatusDisabled = 0
)

// LoginResult is the payload of a successful login response.
type LoginResult struct {
	Token    string `json:"token"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// UserInfo is the payload of GET /user/info for the calling session.
type UserInfo struct {
	UserID      int64       `json:"userId"`
	Username    string      `json:"username"`
	Role        string      `json:"role"`
	Permissions Permissions `json:"permissions"`
}

// Permissions carries the fine-grained capability flags and the raw
// permission codes granted to a session.
type Permissions struct {
	CanViewAllUsers  bool     `json:"canViewAllUsers"`
	CanModifyUser    bool     `json:"canModifyUser"`
	CanBanUser       bool     `json:"canBanUser"`
	CanDeleteUser    bool     `json:"canDeleteUser"`
	CanResetPassword bool     `json:"canResetPassword"`
	CanModifyRole    bool     `json:"canModifyRole"`
	PermissionCodes  []string `json:"permissionCodes"`
}

// User is an account row as listed by the administration endpoints.
type User struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Status     int    `json:"status"`
	CreateTime string `json:"createTime"`
}

// UserPage is a paginated user listing.
type UserPage struct {
	Records []User `json:"records"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	Size    int    `json:"size"`
}

// PermissionDefinition is an admin-managed permission node. Nodes form a
// tree via ParentID; a root node has ParentID zero.
type PermissionDefinition struct {
	ID            int64  `json:"id"`
	PermCode      string `json:"permCode"`
	PermName      string `json:"permName"`
	PermType      int    `json:"permType"`
	ParentID      int64  `json:"parentId"`
	RoutePath     string `json:"routePath,omitempty"`
	InterfacePath string `json:"interfacePath,omitempty"`
	RequestMethod string `json:"requestMethod,omitempty"`
	Description   string `json:"description,omitempty"`
	Status        int    `json:"status"`
}

// RoleDefinition is an admin-managed role row.
type RoleDefinition struct {
	ID          int64  `json:"id"`
	RoleCode    string `json:"roleCode"`
	RoleName    string `json:"roleName"`
	Description string `json:"description,omitempty"`
}

// RegisterRequest is the registration payload forwarded to the backend.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

// ListUsersParams narrows an administrative user listing.
type ListUsersParams struct {
	Role    string
	Keyword string
	Page    int
	Size    int
}
