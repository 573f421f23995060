package auth

import (
	"context"
	"testing"

	"github.com/dukerupert/pizzeria/internal/model"
)

func TestWithSessionAndFromContext(t *testing.T) {
	sess := &model.Session{Token: "abc", Name: "alice", Street: "Elm St"}

	ctx := WithSession(context.Background(), sess)
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected session in context")
	}
	if got.Name != "alice" {
		t.Errorf("Name = %q, want %q", got.Name, "alice")
	}
	if got.Street != "Elm St" {
		t.Errorf("Street = %q, want %q", got.Street, "Elm St")
	}
}

func TestFromContextMissing(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("expected false for missing session")
	}
}

func TestFromContextNilSession(t *testing.T) {
	ctx := WithSession(context.Background(), nil)
	if _, ok := FromContext(ctx); ok {
		t.Error("expected false for nil session")
	}
}

func TestUserName(t *testing.T) {
	ctx := WithSession(context.Background(), &model.Session{Name: "bob"})
	if UserName(ctx) != "bob" {
		t.Errorf("UserName = %q, want %q", UserName(ctx), "bob")
	}
}

func TestUserNameMissing(t *testing.T) {
	if UserName(context.Background()) != "" {
		t.Error("expected empty name for missing context")
	}
}
