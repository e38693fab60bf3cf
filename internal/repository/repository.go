package repository

import (
	"context"

	"github.com/nkiryanov/feedbackadmin/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with username exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, username string, hashedPassword string) (models.User, error)

	// Get user by exact (case-sensitive) username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

type QALogFilter struct {
	Skip   int
	Limit  int
	Search string // case-insensitive substring of the query, empty means no filter
}

type LowSimilarityFilter struct {
	Skip     int
	Limit    int
	MinScore *float64 // inclusive, nil means no bound
	MaxScore *float64 // inclusive, nil means no bound
}

// Read-only reports over the log tables
type ReportRepo interface {
	// Feedback counters per QA query, most unsatisfied first
	FeedbackSummary(ctx context.Context, limit int) ([]models.FeedbackSummary, error)

	// QA logs ordered by id
	ListQALogs(ctx context.Context, filter QALogFilter) ([]models.QALog, error)

	// Low similarity queries ordered by id
	ListLowSimilarity(ctx context.Context, filter LowSimilarityFilter) ([]models.LowSimilarityQuery, error)

	// No-result hits per query, most frequent first
	NoResultSummary(ctx context.Context, limit int) ([]models.NoResultSummary, error)
}

type Storage interface {
	User() UserRepo
	Report() ReportRepo
}

// Sessions hands out storage bound to one database session.
// The session is released when fn returns, whatever it returns.
type Sessions interface {
	WithSession(ctx context.Context, fn func(Storage) error) error
}
