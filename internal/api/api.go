// Package api contains helpers shared by http handlers: json responses, request logging and body limits.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/sirupsen/logrus"
	"github.com/tomasen/realip"
)

type loggerCtxKey struct{}

// Error ...
// swagger:model
type Error struct {
	Error string `json:"error"`
}

// WriteOK writes json body.
func WriteOK(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		logrus.WithError(err).Error("failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// WriteError writes error in json.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteOK(w, status, Error{Error: message})
}

// WriteInternalErrorf logs error and writes generic internal error, so details never leak to client.
func WriteInternalErrorf(ctx context.Context, w http.ResponseWriter, format string, args ...interface{}) {
	GetLogger(ctx).Errorf(format, args...)

	WriteError(w, http.StatusInternalServerError, "internal error")
}

// GetLogger returns request's logger.
func GetLogger(ctx context.Context) logrus.FieldLogger {
	if l, ok := ctx.Value(loggerCtxKey{}).(logrus.FieldLogger); ok {
		return l
	}

	return logrus.StandardLogger()
}

// LoggerMiddleware puts logger with request meta into context and logs handled requests.
func LoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := logrus.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"ip":         realip.FromRequest(r),
			"method":     r.Method,
			"path":       r.URL.Path,
		})

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), loggerCtxKey{}, logrus.FieldLogger(l))))

		l.WithFields(logrus.Fields{
			"status":   ww.Status(),
			"duration": time.Since(start).String(),
		}).Debug("request handled")
	})
}

// BodyLimiterMiddleware limits request body size.
func BodyLimiterMiddleware(size int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}

