package authz

// View is the capability variant computed once per session change. Route
// guards and the navigation resolver consume it as data instead of
// re-deriving role comparisons at every call site.
type View int

const (
	// ViewPublic is an anonymous visitor.
	ViewPublic View = iota
	// ViewUser is an ordinary authenticated account.
	ViewUser
	// ViewAdmin is an authenticated administrator.
	ViewAdmin
	// ViewSuperAdmin is an authenticated super administrator.
	ViewSuperAdmin
)

// NewView derives the capability view for a session snapshot.
func NewView(authenticated bool, role Role) View {
	if !authenticated {
		return ViewPublic
	}
	switch role {
	case RoleSuperAdmin:
		return ViewSuperAdmin
	case RoleAdmin:
		return ViewAdmin
	default:
		return ViewUser
	}
}

// Authenticated reports whether the view belongs to a logged-in session.
func (v View) Authenticated() bool {
	return v != ViewPublic
}

// Admin reports whether the view has at least admin capabilities.
func (v View) Admin() bool {
	return v == ViewAdmin || v == ViewSuperAdmin
}

// SuperAdmin reports whether the view bypasses fine-grained checks.
func (v View) SuperAdmin() bool {
	return v == ViewSuperAdmin
}

func (v View) String() string {
	switch v {
	case ViewUser:
		return "user"
	case ViewAdmin:
		return "admin"
	case ViewSuperAdmin:
		return "super_admin"
	default:
		return "public"
	}
}
