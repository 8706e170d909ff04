package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	mw "github.com/edvin/crisisdesk/internal/api/middleware"
	"github.com/edvin/crisisdesk/internal/model"
)

const (
	validIncidentID = "inc_a1b2c3d4e5"
	validResourceID = "res_f6g7h8i9j0"
	validAssignment = "0190f5a2-7c3e-7b1a-9d2e-3f4a5b6c7d8e"
)

var (
	reporter = model.Actor{ID: "user-1", Role: model.RoleReporter}
	admin    = model.Actor{ID: "admin-1", Role: model.RoleAdmin}
	team     = model.Actor{ID: "team-a", Role: model.RoleRescueTeam}
)

// newRequest creates a new HTTP request with an optional JSON body.
func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// newRequestRaw creates a new HTTP request with a raw string body.
func newRequestRaw(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withChiURLParam adds a chi URL parameter to the request context.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withActor(r *http.Request, actor model.Actor) *http.Request {
	return r.WithContext(mw.WithActor(r.Context(), actor))
}

// decodeErrorResponse parses the JSON error response body into a map.
func decodeErrorResponse(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

type listBody[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func decodeList[T any](rec *httptest.ResponseRecorder) listBody[T] {
	var body listBody[T]
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}
