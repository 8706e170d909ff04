package middleware

import (
	"context"
	"net/http"

	"github.com/edvin/crisisdesk/internal/api/response"
	"github.com/edvin/crisisdesk/internal/model"
)

type contextKey string

const ActorKey contextKey = "actor"

// Headers set by the upstream gateway after authenticating the caller.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
)

// Actor returns a middleware that reads the caller identity from the gateway
// headers and rejects requests without a valid one.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := model.Actor{
			ID:   r.Header.Get(HeaderActorID),
			Role: model.Role(r.Header.Get(HeaderActorRole)),
		}
		if actor.ID == "" {
			response.WriteError(w, http.StatusUnauthorized, "missing "+HeaderActorID)
			return
		}
		if !actor.Role.Valid() {
			response.WriteError(w, http.StatusUnauthorized, "invalid "+HeaderActorRole)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// GetActor extracts the actor placed on the context by Actor.
func GetActor(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(model.Actor)
	return actor, ok
}
