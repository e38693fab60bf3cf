package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/feedbackadmin/internal/models"
	"github.com/nkiryanov/feedbackadmin/internal/repository"
)

type ReportRepo struct {
	db DBTX
}

const feedbackSummary = `-- name: FeedbackSummary
SELECT
	q.query,
	count(f.id) FILTER (WHERE f.liked) AS satisfied_count,
	count(f.id) FILTER (WHERE NOT f.liked) AS unsatisfied_count,
	count(f.id) AS total_count
FROM qa_logs q
JOIN feedback f ON q.task_id = f.message_id
GROUP BY q.query
ORDER BY unsatisfied_count DESC, q.query
LIMIT $1
`

func (r *ReportRepo) FeedbackSummary(ctx context.Context, limit int) ([]models.FeedbackSummary, error) {
	rows, _ := r.db.Query(ctx, feedbackSummary, limit)
	summary, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.FeedbackSummary, error) {
		var s models.FeedbackSummary
		err := row.Scan(&s.Query, &s.SatisfiedCount, &s.UnsatisfiedCount, &s.TotalCount)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return summary, nil
}

const listQALogs = `-- name: ListQALogs
SELECT id, task_id, query, response, created_at
FROM qa_logs
WHERE $1::text = '' OR query ILIKE '%' || $1::text || '%'
ORDER BY id
OFFSET $2
LIMIT $3
`

func (r *ReportRepo) ListQALogs(ctx context.Context, filter repository.QALogFilter) ([]models.QALog, error) {
	rows, _ := r.db.Query(ctx, listQALogs, filter.Search, filter.Skip, filter.Limit)
	logs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.QALog, error) {
		var l models.QALog
		err := row.Scan(&l.ID, &l.TaskID, &l.Query, &l.Response, &l.CreatedAt)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return logs, nil
}

const listLowSimilarity = `-- name: ListLowSimilarity
SELECT id, query_type, col, query_content, similarity_score, metric_type, results, created_at
FROM low_similarity_queries
WHERE ($1::float8 IS NULL OR similarity_score >= $1)
	AND ($2::float8 IS NULL OR similarity_score <= $2)
ORDER BY id
OFFSET $3
LIMIT $4
`

func (r *ReportRepo) ListLowSimilarity(ctx context.Context, filter repository.LowSimilarityFilter) ([]models.LowSimilarityQuery, error) {
	rows, _ := r.db.Query(ctx, listLowSimilarity, filter.MinScore, filter.MaxScore, filter.Skip, filter.Limit)
	queries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.LowSimilarityQuery, error) {
		var q models.LowSimilarityQuery
		err := row.Scan(
			&q.ID,
			&q.QueryType,
			&q.Col,
			&q.QueryContent,
			&q.SimilarityScore,
			&q.MetricType,
			&q.Results,
			&q.CreatedAt,
		)
		return q, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return queries, nil
}

const noResultSummary = `-- name: NoResultSummary
SELECT query, count(id) AS count
FROM no_result_logs
GROUP BY query
ORDER BY count DESC, query
LIMIT $1
`

func (r *ReportRepo) NoResultSummary(ctx context.Context, limit int) ([]models.NoResultSummary, error) {
	rows, _ := r.db.Query(ctx, noResultSummary, limit)
	summary, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.NoResultSummary, error) {
		var s models.NoResultSummary
		err := row.Scan(&s.Query, &s.Count)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return summary, nil
}
