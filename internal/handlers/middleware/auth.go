package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/nkiryanov/feedbackadmin/internal/apperrors"
	"github.com/nkiryanov/feedbackadmin/internal/handlers/render"
	"github.com/nkiryanov/feedbackadmin/internal/handlers/userctx"
	"github.com/nkiryanov/feedbackadmin/internal/models"
)

const (
	NotAuthenticatedMessage   = "Not authenticated"
	InvalidCredentialsMessage = "Could not validate credentials"
	UserNotFoundMessage       = "User not found"
)

type authService interface {
	// Verify token and load its user
	// Has to return apperrors token error if token invalid and apperrors.ErrUserNotFound if user is gone
	UserFromToken(ctx context.Context, token string) (models.User, error)
}

// Extract bearer token from Authorization header, scheme is case-insensitive
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	render.Error(w, message, http.StatusUnauthorized)
}

// AuthMiddleware lets request through only with valid bearer token of existing user
// The user is put into request context
func AuthMiddleware(as authService, l logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, NotAuthenticatedMessage)
				return
			}

			user, err := as.UserFromToken(r.Context(), token)
			switch {
			case err == nil:
			case apperrors.IsTokenError(err):
				l.Warn("access token rejected", "uri", r.RequestURI, "reason", err.Error())
				unauthorized(w, InvalidCredentialsMessage)
				return
			case errors.Is(err, apperrors.ErrUserNotFound):
				l.Warn("access token of unknown user", "uri", r.RequestURI)
				render.Error(w, UserNotFoundMessage, http.StatusNotFound)
				return
			default:
				l.Error("user lookup failed", "uri", r.RequestURI, "error", err)
				render.InternalError(w)
				return
			}

			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
