package handlers

import (
	"context"
	"net/http"

	"github.com/rs/cors"

	"github.com/nkiryanov/feedbackadmin/internal/handlers/middleware"
	"github.com/nkiryanov/feedbackadmin/internal/logger"
	"github.com/nkiryanov/feedbackadmin/internal/models"
	"github.com/nkiryanov/feedbackadmin/internal/repository"
)

const (
	APIPrefix   = "/api/v1"
	ServiceName = "Admin System API"
	Version     = "1.0.0"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	reportService reportService,
	corsOrigins []string,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService, logger)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	api := http.NewServeMux()

	api.Handle("POST /login", handleLogin(authService, logger))
	api.Handle("GET /me", withAuth(handleMe()))
	api.Handle("POST /logout", withAuth(handleLogout(logger)))

	api.Handle("GET /feedback/summary", withAuth(handleFeedbackSummary(reportService, logger)))
	api.Handle("GET /qa-logs", withAuth(handleQALogs(reportService, logger)))
	api.Handle("GET /low-similarity", withAuth(handleLowSimilarity(reportService, logger)))
	api.Handle("GET /no-result/summary", withAuth(handleNoResultSummary(reportService, logger)))

	root := http.NewServeMux()
	root.Handle(APIPrefix+"/", http.StripPrefix(APIPrefix, withEnvelopeFallback(api)))
	root.Handle("GET /{$}", handleRoot())

	handler := chain(withEnvelopeFallback(root),
		middleware.LoggerMiddleware(logger),
		middleware.RecoverMiddleware(logger),
		cors.New(cors.Options{
			AllowedOrigins:   corsOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           3600,
		}).Handler,
	)

	return handler
}

type authService interface {
	// Login user with username and password
	// Has to return apperrors.ErrUserNotFound or apperrors.ErrBadPassword if credentials are wrong
	Login(ctx context.Context, username string, password string) (models.IssuedToken, error)

	// Verify access token and return user it belongs to
	UserFromToken(ctx context.Context, token string) (models.User, error)
}

type reportService interface {
	// All of them have to return *apperrors.InvalidParamError if params are out of range
	FeedbackSummary(ctx context.Context, limit int) ([]models.FeedbackSummary, error)
	QALogs(ctx context.Context, filter repository.QALogFilter) ([]models.QALog, error)
	LowSimilarity(ctx context.Context, filter repository.LowSimilarityFilter) ([]models.LowSimilarityQuery, error)
	NoResultSummary(ctx context.Context, limit int) ([]models.NoResultSummary, error)
}
