package shared_test

import (
	"context"
	"testing"

	"github.com/interviewhub/gateway/internal/shared"
)

func TestCSRFTokenLifecycle(t *testing.T) {
	manager := shared.NewCSRFManager("csrfsecret")
	sess := &shared.Session{ID: "sess-1"}
	ctx := context.Background()

	token, err := manager.EnsureToken(ctx, sess)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}

	again, err := manager.EnsureToken(ctx, sess)
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if again != token {
		t.Fatalf("EnsureToken must be stable within a session")
	}

	if err := manager.VerifyToken(ctx, sess, token); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := manager.VerifyToken(ctx, sess, "forged"); err == nil {
		t.Fatalf("forged token must not verify")
	}
	if err := manager.VerifyToken(ctx, sess, ""); err == nil {
		t.Fatalf("empty token must not verify")
	}
	if err := manager.VerifyToken(ctx, nil, token); err == nil {
		t.Fatalf("missing session must not verify")
	}
}
