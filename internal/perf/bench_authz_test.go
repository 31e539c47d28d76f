package perf

import (
	"fmt"
	"testing"

	"github.com/interviewhub/gateway/internal/authz"
	"github.com/interviewhub/gateway/internal/nav"
	_ "github.com/interviewhub/gateway/testing"
)

func grantedCodes(n int) []string {
	codes := make([]string, 0, n)
	for i := 0; i < n; i++ {
		codes = append(codes, fmt.Sprintf("system:module%d:action%d:button", i%8, i))
	}
	return codes
}

func BenchmarkEvaluatorHas(b *testing.B) {
	eval := authz.Evaluator{Role: authz.RoleUser, Perms: authz.NewSet(grantedCodes(64)...)}
	hit := authz.Code("system:module1:action1:button")
	miss := authz.Code("system:module9:missing:button")

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = eval.Has(hit)
		_ = eval.Has(miss)
	}
}

func BenchmarkEvaluatorHasLegacyDialect(b *testing.B) {
	eval := authz.Evaluator{Role: authz.RoleUser, Perms: authz.NewSet("button.user.edit")}
	code := authz.Code("button:user:edit")

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = eval.Has(code)
	}
}

func BenchmarkResolverEntries(b *testing.B) {
	rs := nav.NewResolver()
	eval := authz.Evaluator{Role: authz.RoleUser, Perms: authz.NewSet(grantedCodes(32)...)}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = rs.Entries(authz.ViewUser, eval)
	}
}

func BenchmarkSetConstruction(b *testing.B) {
	codes := grantedCodes(64)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = authz.NewSet(codes...)
	}
}
