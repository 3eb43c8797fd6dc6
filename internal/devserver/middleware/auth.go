package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/tourcompanion/internal/devserver/accounts"
	"github.com/mcoot/tourcompanion/internal/devserver/apierr"
	"github.com/mcoot/tourcompanion/internal/model"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Auth rejects requests without a valid bearer token
func Auth(service *accounts.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			session, err := service.ValidateSession(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *accounts.Session {
	session, _ := ctx.Value(sessionContextKey).(*accounts.Session)
	return session
}

// MustGetIdentity returns the authenticated identity or panics
func MustGetIdentity(ctx context.Context) model.Identity {
	session := GetSession(ctx)
	if session == nil {
		panic("no session in context - auth middleware not applied?")
	}
	return session.Identity
}
