// Package session binds the browser session cookie into request context.
// The draft store scopes in-progress answers to this session, so every
// journey route runs behind it.
package session

import (
	"net/http"

	"casework/pkg/requestcontext"
)

// CookieName is the session cookie the middleware reads.
const CookieName = "casework_session"

// Middleware extracts the session identifier from the request cookie and
// stores it in context. Requests without a cookie proceed with an empty
// session id; the handler decides whether that matters.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
			r = r.WithContext(requestcontext.WithSessionID(r.Context(), cookie.Value))
		}
		next.ServeHTTP(w, r)
	})
}
