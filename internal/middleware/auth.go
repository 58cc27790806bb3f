package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Decentr-net/hermes/internal/api"
	"github.com/Decentr-net/hermes/internal/session"
)

// SessionCookie is a name of cookie carrying session token.
const SessionCookie = "session"

type userIDCtxKey struct{}

// Authenticate resolves session token to user id and puts it into request context.
// Requests without valid token are passed through unauthenticated.
func Authenticate(s session.Store) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := GetToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := s.Resolve(r.Context(), token)
			if err != nil {
				if !errors.Is(err, session.ErrNotFound) {
					api.GetLogger(r.Context()).WithError(err).Error("failed to resolve session")
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
		})
	}
}

// RequireAuth rejects requests without authenticated user.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserID(r.Context()); !ok {
			api.WriteError(w, http.StatusUnauthorized, "user not authenticated")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetToken extracts session token from cookie or bearer authorization header.
func GetToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	const prefix = "Bearer "
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, prefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, prefix))
	}

	return ""
}

// WithUserID ...
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDCtxKey{}, id)
}

// GetUserID returns authenticated user id.
func GetUserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDCtxKey{}).(int64)
	return id, ok
}
