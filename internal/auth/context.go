package auth

import (
	"context"

	"github.com/dukerupert/pizzeria/internal/model"
)

type contextKey struct{}

// WithSession attaches the caller's session to ctx.
func WithSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the caller's session, if any.
func FromContext(ctx context.Context) (*model.Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(*model.Session)
	return sess, ok && sess != nil
}

// UserName returns the session user name, or "" for anonymous callers.
func UserName(ctx context.Context) string {
	sess, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return sess.Name
}
