// Package middleware provides HTTP middlewares for session-cookie
// authentication and request logging.
package middleware

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type ctxKey string

const sessionKey ctxKey = "session"

// SessionCookieName is the cookie the identity provider sets on sign-in
// and every authenticated endpoint requires.
const SessionCookieName = "myacinfo"

// CookieAuth is a middleware that enforces session-cookie authentication.
//
// It checks whether the incoming HTTP request carries a non-empty session
// cookie. On success the cookie value is stored in the request context so
// handlers can identify the session.
func CookieAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(SessionCookieName)
		if err != nil || c.Value == "" {
			http.Error(w, "no session cookie provided", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, c.Value)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionFromContext extracts the session token from the request
// context. Returns an empty string if not found.
func GetSessionFromContext(ctx context.Context) string {
	val := ctx.Value(sessionKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

// WithRequestLogging logs each request's method, path, status and
// duration through the given logger.
func WithRequestLogging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
