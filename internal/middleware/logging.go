package middleware

import (
	"log/slog"
	"net/http"

	"github.com/felixge/httpsnoop"

	"github.com/dukerupert/pizzeria/internal/auth"
)

// RequestLogger returns middleware that logs each HTTP request with method,
// path, status code, duration, bytes written and the peer address. The user
// is added when LoadSession ran first. The wrapped writer keeps Hijack and
// Flush so websocket upgrades pass through.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", m.Code),
				slog.Duration("duration", m.Duration),
				slog.Int64("bytes", m.Written),
				slog.String("remote", RemoteIP(r)),
			}
			if name := auth.UserName(r.Context()); name != "" {
				attrs = append(attrs, slog.String("user", name))
			}

			switch {
			case m.Code >= 500:
				logger.LogAttrs(r.Context(), slog.LevelError, "request", attrs...)
			case m.Code >= 400:
				logger.LogAttrs(r.Context(), slog.LevelWarn, "request", attrs...)
			default:
				logger.LogAttrs(r.Context(), slog.LevelInfo, "request", attrs...)
			}
		})
	}
}
