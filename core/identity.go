package core

import "context"

// Roles
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Identity is the signed-in user acting on the store.
// It travels in the context.Context of every call instead of living in process-wide state.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

func (id Identity) IsTeacher() bool { return id.Role == RoleTeacher }
func (id Identity) IsStudent() bool { return id.Role == RoleStudent }

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the Identity carried by ctx.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID != ""
}

// RequireIdentity returns the Identity carried by ctx or ErrNotAuthenticated.
func RequireIdentity(ctx context.Context) (Identity, error) {
	id, ok := IdentityFrom(ctx)
	if !ok {
		return Identity{}, ErrNotAuthenticated
	}
	return id, nil
}

// RequireRole is RequireIdentity plus a role check.
func RequireRole(ctx context.Context, role string) (Identity, error) {
	id, err := RequireIdentity(ctx)
	if err != nil {
		return id, err
	}
	if id.Role != role {
		return id, ErrPermissionDenied
	}
	return id, nil
}
