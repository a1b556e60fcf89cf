package service

import "context"

type contextKey string

const actorKey contextKey = "actor"

// WithActor stores the authenticated principal on the context for audit
// attribution.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the authenticated principal, or "" when the
// request was unauthenticated.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey).(string)
	return actor
}
