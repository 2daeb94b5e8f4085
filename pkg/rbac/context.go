package rbac

import "context"

type roleKey struct{}

// WithRole stores the authenticated user's role name in the context.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// RoleFromContext retrieves the role name set by the identity middleware.
func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleKey{}).(string)
	return role, ok
}
