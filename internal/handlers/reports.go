package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/feedbackadmin/internal/apperrors"
	"github.com/nkiryanov/feedbackadmin/internal/handlers/render"
	"github.com/nkiryanov/feedbackadmin/internal/logger"
	"github.com/nkiryanov/feedbackadmin/internal/repository"
	"github.com/nkiryanov/feedbackadmin/internal/service/report"
)

// Render report rows or map the error: bad params are 400, the rest is 500
func renderReport[T any](w http.ResponseWriter, l logger.Logger, name string, rows []T, err error) {
	var paramErr *apperrors.InvalidParamError

	switch {
	case err == nil:
		if rows == nil {
			rows = []T{}
		}
		render.JSON(w, rows)
	case errors.As(err, &paramErr):
		render.Error(w, paramErr.Message, http.StatusBadRequest)
	default:
		l.Error("report failed", "report", name, "error", err)
		render.InternalError(w)
	}
}

func handleFeedbackSummary(reportService reportService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := render.NewQuery(r)
		limit := q.Int("limit", report.DefaultSummaryLimit)
		if !q.Valid(w) {
			return
		}

		rows, err := reportService.FeedbackSummary(r.Context(), limit)
		renderReport(w, l, "feedback summary", rows, err)
	})
}

func handleQALogs(reportService reportService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := render.NewQuery(r)
		filter := repository.QALogFilter{
			Skip:   q.Int("skip", 0),
			Limit:  q.Int("limit", report.DefaultListLimit),
			Search: q.String("search"),
		}
		if !q.Valid(w) {
			return
		}

		rows, err := reportService.QALogs(r.Context(), filter)
		renderReport(w, l, "qa logs", rows, err)
	})
}

func handleLowSimilarity(reportService reportService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := render.NewQuery(r)
		filter := repository.LowSimilarityFilter{
			Skip:     q.Int("skip", 0),
			Limit:    q.Int("limit", report.DefaultListLimit),
			MinScore: q.Float("min_score"),
			MaxScore: q.Float("max_score"),
		}
		if !q.Valid(w) {
			return
		}

		rows, err := reportService.LowSimilarity(r.Context(), filter)
		renderReport(w, l, "low similarity", rows, err)
	})
}

func handleNoResultSummary(reportService reportService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := render.NewQuery(r)
		limit := q.Int("limit", report.DefaultSummaryLimit)
		if !q.Valid(w) {
			return
		}

		rows, err := reportService.NoResultSummary(r.Context(), limit)
		renderReport(w, l, "no result summary", rows, err)
	})
}
