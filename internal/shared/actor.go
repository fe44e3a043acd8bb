package shared

import "context"

type actorContextKey struct{}

// ContextWithActor stores the acting user identifier in context. The value
// is an opaque string supplied by the caller; it is never validated here.
func ContextWithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor identifier, empty when anonymous.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorContextKey{}).(string)
	return actor
}
