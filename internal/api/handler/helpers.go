package handler

import (
	"net/http"

	mw "github.com/edvin/crisisdesk/internal/api/middleware"
	"github.com/edvin/crisisdesk/internal/api/response"
	"github.com/edvin/crisisdesk/internal/model"
)

// requireActor returns the caller set by the Actor middleware. Returns false
// and writes an error response if there is none.
func requireActor(w http.ResponseWriter, r *http.Request) (model.Actor, bool) {
	actor, ok := mw.GetActor(r.Context())
	if !ok {
		response.WriteError(w, http.StatusUnauthorized, "missing actor")
		return model.Actor{}, false
	}
	return actor, true
}
