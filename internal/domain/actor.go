package domain

import "context"

// Actor is whoever performs a ledger operation. Authentication happens
// elsewhere; the ledger only looks at Privileged.
type Actor struct {
	ID         string
	Name       string
	Privileged bool
}

// Role is the access level carried in tokens.
type Role string

const (
	// RoleAdmin may add credit, change limits and remove accounts.
	RoleAdmin Role = "admin"

	// RoleEmployee may register customers and record sales.
	RoleEmployee Role = "employee"
)

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// IsPrivileged reports whether the role grants administrative operations.
func (r Role) IsPrivileged() bool {
	return r == RoleAdmin
}

// IsAuthenticated is true for any actor with an identity.
func (a Actor) IsAuthenticated() bool {
	return a.ID != ""
}

// RequireAuthenticated returns ErrUnauthorized for anonymous actors.
func (a Actor) RequireAuthenticated() error {
	if !a.IsAuthenticated() {
		return ErrUnauthorized
	}
	return nil
}

// RequirePrivileged returns ErrUnauthorized unless the actor is an administrator.
func (a Actor) RequirePrivileged() error {
	if !a.IsAuthenticated() || !a.Privileged {
		return ErrUnauthorized
	}
	return nil
}

// SystemActor is used for background maintenance.
var SystemActor = Actor{ID: "system", Name: "system", Privileged: true}

type actorKey struct{}

// ContextWithActor stores the actor on ctx.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored on ctx, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
