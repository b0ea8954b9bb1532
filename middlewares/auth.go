package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"listo/apperrors"
	"listo/logger"
	"listo/models"
)

type contextKey string

const userKey contextKey = "user"

// Authenticator resolves a bearer token to a user identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.PublicUser, error)
}

// RequireAuth rejects requests without a valid bearer token and attaches the
// caller's identity to the request context.
func RequireAuth(authn Authenticator, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry := logger.WithRequestID(log, GetRequestID(r.Context())).WithField("component", "auth")

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				entry.Debug("no bearer token")
				writeError(w, http.StatusUnauthorized, "No token provided")
				return
			}
			tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			user, err := authn.Authenticate(r.Context(), tokenStr)
			if err != nil {
				status := apperrors.HTTPStatus(err)
				if status == http.StatusInternalServerError {
					entry.WithError(err).Error("authenticate request")
				} else {
					entry.WithError(err).Warn("rejected token")
				}
				writeError(w, status, apperrors.PublicMessage(err))
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user models.PublicUser) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser returns the authenticated identity, if any.
func GetUser(r *http.Request) (models.PublicUser, bool) {
	user, ok := r.Context().Value(userKey).(models.PublicUser)
	return user, ok
}

// Helper to retrieve user ID in handler
func GetUserID(r *http.Request) uuid.UUID {
	if user, ok := GetUser(r); ok {
		return user.ID
	}
	return uuid.Nil
}
