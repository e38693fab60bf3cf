package report

import (
	"context"
	"fmt"

	"github.com/nkiryanov/feedbackadmin/internal/apperrors"
	"github.com/nkiryanov/feedbackadmin/internal/models"
	"github.com/nkiryanov/feedbackadmin/internal/repository"
)

const (
	MinLimit = 1
	MaxLimit = 100

	DefaultSummaryLimit = 10
	DefaultListLimit    = 100
)

// Read-only reports, each call runs in its own database session
type ReportService struct {
	sessions repository.Sessions
}

func NewService(sessions repository.Sessions) *ReportService {
	return &ReportService{sessions: sessions}
}

func (s *ReportService) FeedbackSummary(ctx context.Context, limit int) ([]models.FeedbackSummary, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	var summary []models.FeedbackSummary
	err := s.sessions.WithSession(ctx, func(storage repository.Storage) error {
		var err error
		summary, err = storage.Report().FeedbackSummary(ctx, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("feedback summary: %w", err)
	}

	return summary, nil
}

func (s *ReportService) QALogs(ctx context.Context, filter repository.QALogFilter) ([]models.QALog, error) {
	if err := checkPage(filter.Skip, filter.Limit); err != nil {
		return nil, err
	}

	var logs []models.QALog
	err := s.sessions.WithSession(ctx, func(storage repository.Storage) error {
		var err error
		logs, err = storage.Report().ListQALogs(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list qa logs: %w", err)
	}

	return logs, nil
}

func (s *ReportService) LowSimilarity(ctx context.Context, filter repository.LowSimilarityFilter) ([]models.LowSimilarityQuery, error) {
	if err := checkPage(filter.Skip, filter.Limit); err != nil {
		return nil, err
	}
	if err := checkScores(filter.MinScore, filter.MaxScore); err != nil {
		return nil, err
	}

	var queries []models.LowSimilarityQuery
	err := s.sessions.WithSession(ctx, func(storage repository.Storage) error {
		var err error
		queries, err = storage.Report().ListLowSimilarity(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list low similarity queries: %w", err)
	}

	return queries, nil
}

func (s *ReportService) NoResultSummary(ctx context.Context, limit int) ([]models.NoResultSummary, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	var summary []models.NoResultSummary
	err := s.sessions.WithSession(ctx, func(storage repository.Storage) error {
		var err error
		summary, err = storage.Report().NoResultSummary(ctx, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("no result summary: %w", err)
	}

	return summary, nil
}

func checkLimit(limit int) error {
	if limit < MinLimit || limit > MaxLimit {
		return apperrors.NewInvalidParam("Limit must be between 1 and 100")
	}
	return nil
}

func checkPage(skip int, limit int) error {
	if skip < 0 {
		return apperrors.NewInvalidParam("Skip value cannot be negative")
	}
	return checkLimit(limit)
}

func checkScores(minScore *float64, maxScore *float64) error {
	if minScore != nil && (*minScore < 0 || *minScore > 1) {
		return apperrors.NewInvalidParam("Minimum score must be between 0 and 1")
	}
	if maxScore != nil && (*maxScore < 0 || *maxScore > 1) {
		return apperrors.NewInvalidParam("Maximum score must be between 0 and 1")
	}
	if minScore != nil && maxScore != nil && *minScore > *maxScore {
		return apperrors.NewInvalidParam("Minimum score cannot be greater than maximum score")
	}
	return nil
}
