package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"accounts-api/internal/model"
)

type contextKey string

const callerKey contextKey = "caller"

// IdentityMiddleware lifts the gateway-injected X-User-Id/X-User-Role
// headers into the request context. It never rejects a request: this
// service trusts the perimeter and does not enforce roles itself.
func IdentityMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get("X-User-Id")
			if userID != "" {
				caller := model.Caller{
					ID:   userID,
					Role: r.Header.Get("X-User-Role"),
				}
				r = r.WithContext(context.WithValue(r.Context(), callerKey, caller))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CallerFrom extracts the gateway-injected caller identity, if any.
func CallerFrom(ctx context.Context) (model.Caller, bool) {
	caller, ok := ctx.Value(callerKey).(model.Caller)
	return caller, ok
}

// LoggingMiddleware logs every request with its status and duration.
func LoggingMiddleware(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			fields := logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   wrapped.statusCode,
				"duration": time.Since(start).String(),
			}
			if caller, ok := CallerFrom(r.Context()); ok {
				fields["userId"] = caller.ID
			}
			logger.WithFields(fields).Info("Request handled")
		})
	}
}

// CORSMiddleware adds CORS headers for the browser front end.
func CORSMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-Id, X-User-Role")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
