package tenant

import (
	"context"
	"log/slog"
)

// contextKey prevents collisions with other packages storing context values.
type contextKey struct{}

// WithTenant returns a context carrying the resolved tenant. The tenant is
// threaded explicitly through the request context, never through package
// globals, so concurrent requests cannot observe each other's tenant.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext retrieves the resolved tenant, if any.
func FromContext(ctx context.Context) (*Tenant, bool) {
	t, ok := ctx.Value(contextKey{}).(*Tenant)
	return t, ok && t != nil
}

// IDFromContext provides fast access to the tenant id alone.
func IDFromContext(ctx context.Context) (string, bool) {
	t, ok := FromContext(ctx)
	if !ok {
		return "", false
	}
	return t.ID, true
}

// MustFromContext panics if no tenant is present. Use only in code that is
// unreachable without a resolved tenant.
func MustFromContext(ctx context.Context) *Tenant {
	t, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return t
}

// LoggerExtractor enriches log records with the tenant id when present.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id), true
		}
		return slog.Attr{}, false
	}
}
