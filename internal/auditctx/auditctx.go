// Package auditctx carries the authenticated caller through request contexts, so services
// can attribute audit entries without an actor parameter on every method.
package auditctx

import "context"

// Actor is the caller behind a request. SessionID is the token's sid claim when present.
type Actor struct {
	UserID    string
	SessionID string
	IPAddress string
	UserAgent string
}

type actorKey struct{}

func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// FromContext reports the actor stored in ctx. Actors without a user id are ignored.
func FromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	if actor, ok := ctx.Value(actorKey{}).(Actor); ok && actor.UserID != "" {
		return actor, true
	}
	return Actor{}, false
}
