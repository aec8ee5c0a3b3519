package auth

import (
	"context"

	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
)

type ctxKey struct{}

func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

// ActorFrom returns the actor placed on ctx by the auth middleware.
func ActorFrom(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(ctxKey{}).(model.Actor)
	return actor, ok && actor.TenantID != ""
}
