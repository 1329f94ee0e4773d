package testutil

import (
	"net/http"
	"time"

	"casework/pkg/requestcontext"
)

// WithSessionID adds a session identifier to the request context.
// This simulates what the session middleware would do for a browsing user.
func WithSessionID(req *http.Request, sessionID string) *http.Request {
	if sessionID == "" {
		return req
	}
	return req.WithContext(requestcontext.WithSessionID(req.Context(), sessionID))
}

// WithRequestTime pins the request-scoped clock, so allocator and summary
// output is deterministic in tests.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
