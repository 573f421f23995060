package middleware

import (
	"net/http"
	"strings"

	"github.com/dukerupert/pizzeria/internal/auth"
	"github.com/dukerupert/pizzeria/internal/session"
)

const (
	SessionCookieName  = "pizzeria_session"
	SessionTokenHeader = "Session-Token"
)

// SessionToken returns the session token sent with r. The cookie wins over
// the header.
func SessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return strings.TrimSpace(r.Header.Get(SessionTokenHeader))
}

// LoadSession attaches the caller's session to the request context when the
// request carries a live session token. Anonymous requests pass through
// unchanged.
func LoadSession(sessions *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := SessionToken(r)
			if tok == "" {
				next.ServeHTTP(w, r)
				return
			}
			sess := sessions.Get(tok)
			if sess == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
		})
	}
}
