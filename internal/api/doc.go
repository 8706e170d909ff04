// Package api provides the crisisdesk REST API. Callers are authenticated by
// an upstream gateway which forwards the actor in X-Actor-ID and X-Actor-Role.
package api
