package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type contextKey string

// RoomIDParam is the URL parameter naming the room of a request.
const RoomIDParam = "roomId"

// RoomID returns the room of the matched route, or "" when the route has none.
// It only sees the parameter once chi has routed the request.
func RoomID(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return ""
	}
	return rctx.URLParam(RoomIDParam)
}

// RoutePattern returns the matched chi pattern, e.g. "/rooms/{roomId}/audio",
// falling back to the raw path for unmatched requests.
func RoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func withValue(r *http.Request, key contextKey, value string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), key, value))
}
