package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"rentaltoll-backend/internal/logger"
	"rentaltoll-backend/internal/security"
)

type contextKey string

const operatorKey contextKey = "operator"

// OperatorFromContext returns the authenticated subject, if any.
func OperatorFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(operatorKey).(string)
	return sub, ok
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs every request with its status and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Request(r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// AuthMiddleware requires a valid bearer token on every path except the
// public ones.
func AuthMiddleware(tm security.TokenManager, public ...string) func(http.Handler) http.Handler {
	open := make(map[string]struct{}, len(public))
	for _, p := range public {
		open[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := open[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				writeError(w, r, errUnauthorized)
				return
			}
			claims, err := tm.ValidateToken(token)
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), operatorKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
