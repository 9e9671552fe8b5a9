package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// UserHeader identifies the calling user. The gateway trusts it as-is;
// authentication is out of scope.
const UserHeader = "X-User-Name"

type contextKey string

const usernameKey contextKey = "username"

// Username creates a middleware requiring the X-User-Name header. Requests
// without it are rejected with 400 before any downstream call is made.
func Username(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := r.Header.Get(UserHeader)
			if username == "" {
				logger.Warn("request without user header",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				respondError(w, http.StatusBadRequest, "X-User-Name header is required")
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UsernameFromContext returns the username stored by the Username middleware
func UsernameFromContext(ctx context.Context) string {
	if username, ok := ctx.Value(usernameKey).(string); ok {
		return username
	}
	return ""
}
