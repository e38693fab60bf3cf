package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/feedbackadmin/internal/apperrors"
	"github.com/nkiryanov/feedbackadmin/internal/handlers/render"
	"github.com/nkiryanov/feedbackadmin/internal/handlers/userctx"
	"github.com/nkiryanov/feedbackadmin/internal/logger"
	"github.com/nkiryanov/feedbackadmin/internal/models"
)

const IncorrectCredentialsMessage = "Incorrect username or password"

func handleLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Username string `form:"username" validate:"required"`
		Password string `form:"password" validate:"required"`
	}
	type response struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindForm[request](w, r)
		if err != nil {
			l.Warn("login form rejected", "error", err)
			return
		}

		token, err := authService.Login(r.Context(), data.Username, data.Password)
		switch {
		case err == nil:
			render.JSON(w, response{AccessToken: token.Value, TokenType: models.TokenTypeBearer})
		case apperrors.IsCredentialsError(err):
			l.Warn("login failed", "username", data.Username, "reason", err)
			w.Header().Set("WWW-Authenticate", "Bearer")
			render.Error(w, IncorrectCredentialsMessage, http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrPasswordHash):
			l.Error("stored password hash is unusable", "username", data.Username, "error", err)
			render.InternalError(w)
		default:
			l.Error("login failed", "username", data.Username, "error", err)
			render.InternalError(w)
		}
	})
}

func handleMe() http.Handler {
	type response struct {
		Username        string `json:"username"`
		IsAuthenticated bool   `json:"is_authenticated"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.InternalError(w)
			return
		}

		render.JSON(w, response{Username: user.Username, IsAuthenticated: true})
	})
}

// Tokens are stateless, client just forgets it
func handleLogout(l logger.Logger) http.Handler {
	type response struct {
		Message  string `json:"message"`
		Username string `json:"username"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.InternalError(w)
			return
		}

		l.Info("user logged out", "username", user.Username)
		render.JSON(w, response{Message: "Successfully logged out", Username: user.Username})
	})
}
