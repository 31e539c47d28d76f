package authz_test

import (
	"testing"

	"github.com/interviewhub/gateway/internal/authz"
)

func TestParseRoleNormalizes(t *testing.T) {
	cases := []struct {
		in   string
		want authz.Role
	}{
		{"USER", authz.RoleUser},
		{"admin", authz.RoleAdmin},
		{" super_admin ", authz.RoleSuperAdmin},
		{"moderator", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := authz.ParseRole(tc.in); got != tc.want {
			t.Fatalf("ParseRole(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestOutranks(t *testing.T) {
	if !authz.RoleSuperAdmin.Outranks(authz.RoleAdmin) {
		t.Fatalf("super admin must outrank admin")
	}
	if authz.RoleAdmin.Outranks(authz.RoleAdmin) {
		t.Fatalf("a role never outranks itself")
	}
	if authz.RoleUser.Outranks(authz.RoleAdmin) {
		t.Fatalf("user must not outrank admin")
	}
	if !authz.RoleAdmin.Outranks("") {
		t.Fatalf("any known role outranks the zero role")
	}
}

func TestSystemRoles(t *testing.T) {
	for _, role := range []authz.Role{authz.RoleUser, authz.RoleAdmin, authz.RoleSuperAdmin} {
		if !role.System() {
			t.Fatalf("%s must be a system role", role)
		}
	}
	if authz.Role("REVIEWER").System() {
		t.Fatalf("custom roles are not system roles")
	}
}

func TestNewView(t *testing.T) {
	if v := authz.NewView(false, authz.RoleSuperAdmin); v != authz.ViewPublic {
		t.Fatalf("unauthenticated session must resolve to public, got %s", v)
	}
	if v := authz.NewView(true, authz.RoleUser); v != authz.ViewUser {
		t.Fatalf("expected user view, got %s", v)
	}
	if v := authz.NewView(true, authz.RoleAdmin); !v.Admin() || v.SuperAdmin() {
		t.Fatalf("admin view misclassified: %s", v)
	}
	if v := authz.NewView(true, authz.RoleSuperAdmin); !v.SuperAdmin() || !v.Admin() || !v.Authenticated() {
		t.Fatalf("super admin view misclassified: %s", v)
	}
}
