package tenantdb

import "context"

type actorKey struct{}

// WithActor records the acting user id in the context. Used to stamp
// DeletedBy on soft deletions and by the audit trail.
func WithActor(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFromContext returns the acting user id, if any.
func ActorFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(actorKey{}).(string)
	return id, ok && id != ""
}
