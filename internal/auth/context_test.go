package auth

import (
	"context"
	"testing"
)

func TestWithAuthRoundTrip(t *testing.T) {
	ac := AuthContext{UserID: 3, Email: "mago@example.com", Token: "abc"}
	ctx := WithAuth(context.Background(), ac)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected AuthContext in context")
	}
	if got != ac {
		t.Errorf("got %+v, want %+v", got, ac)
	}
	if UserID(ctx) != 3 {
		t.Errorf("UserID = %d, want 3", UserID(ctx))
	}
	if Email(ctx) != "mago@example.com" {
		t.Errorf("Email = %q, want %q", Email(ctx), "mago@example.com")
	}
}

func TestFromContextMissing(t *testing.T) {
	ctx := context.Background()
	if _, ok := FromContext(ctx); ok {
		t.Error("expected no AuthContext in empty context")
	}
	if UserID(ctx) != 0 {
		t.Errorf("UserID = %d, want 0", UserID(ctx))
	}
	if Email(ctx) != "" {
		t.Errorf("Email = %q, want empty", Email(ctx))
	}
}
