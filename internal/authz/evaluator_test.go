package authz_test

import (
	"testing"

	"github.com/interviewhub/gateway/internal/authz"
)

func TestEvaluatorSuperAdminBypassesCodes(t *testing.T) {
	eval := authz.Evaluator{Role: authz.RoleSuperAdmin}

	if !eval.Has("system:anything:at:all") {
		t.Fatalf("super admin must pass every code check")
	}
	if !eval.HasAny("a", "b") {
		t.Fatalf("super admin must pass HasAny")
	}
	if !eval.HasAll("a", "b") {
		t.Fatalf("super admin must pass HasAll")
	}
}

func TestEvaluatorChecksGrantedSet(t *testing.T) {
	eval := authz.Evaluator{
		Role:  authz.RoleUser,
		Perms: authz.NewSet("system:menu:categories", "button.question.add"),
	}

	if !eval.Has("system:menu:categories") {
		t.Fatalf("granted code denied")
	}
	if !eval.Has("question:add:button") && !eval.Has("button:question:add") {
		t.Fatalf("dot-dialect grant not honoured through canonical form")
	}
	if eval.Has("system:menu:question-review") {
		t.Fatalf("ungranted code allowed")
	}
}

func TestEvaluatorHasAnyEmptyListDenies(t *testing.T) {
	eval := authz.Evaluator{Role: authz.RoleUser, Perms: authz.NewSet("x")}
	if eval.HasAny() {
		t.Fatalf("HasAny with no codes must deny")
	}
}

func TestEvaluatorHasAllEmptyListAllows(t *testing.T) {
	eval := authz.Evaluator{Role: authz.RoleUser}
	if !eval.HasAll() {
		t.Fatalf("HasAll with no codes is vacuously true")
	}
}

func TestZeroEvaluatorDeniesEverything(t *testing.T) {
	var eval authz.Evaluator
	if eval.Has("system:menu:home") {
		t.Fatalf("zero evaluator must deny")
	}
}
