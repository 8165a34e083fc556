package domain

import (
	"context"
	"errors"
	"testing"
)

func TestActorRequirePrivileged(t *testing.T) {
	tests := []struct {
		name    string
		actor   Actor
		wantErr bool
	}{
		{name: "admin", actor: Actor{ID: "a1", Name: "Ana", Privileged: true}},
		{name: "employee", actor: Actor{ID: "e1", Name: "Edu"}, wantErr: true},
		{name: "anonymous privileged flag", actor: Actor{Privileged: true}, wantErr: true},
		{name: "system", actor: SystemActor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.actor.RequirePrivileged()
			if tt.wantErr && !errors.Is(err, ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestActorRequireAuthenticated(t *testing.T) {
	if err := (Actor{}).RequireAuthenticated(); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := (Actor{ID: "e1"}).RequireAuthenticated(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestActorContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := ActorFromContext(ctx); ok {
		t.Fatal("expected no actor on empty context")
	}

	want := Actor{ID: "e1", Name: "Edu"}
	got, ok := ActorFromContext(ContextWithActor(ctx, want))
	if !ok || got != want {
		t.Fatalf("expected %+v, got %+v (ok=%v)", want, got, ok)
	}
}

func TestRole(t *testing.T) {
	if !RoleAdmin.IsPrivileged() || RoleEmployee.IsPrivileged() {
		t.Fatal("only admin should be privileged")
	}
	if Role("viewer").IsValid() {
		t.Fatal("unknown role should be invalid")
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(ErrConcurrencyExhausted) || !IsTransient(ErrTimeout) {
		t.Fatal("expected transient errors")
	}
	if IsTransient(ErrLimitExceeded) || IsTransient(ErrUnauthorized) {
		t.Fatal("business errors are not transient")
	}
}
