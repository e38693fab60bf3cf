package models

import (
	"time"
)

type QALog struct {
	ID        int64     `json:"id"`
	TaskID    string    `json:"task_id"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// QueryType is 0 or 1, enforced by the table check constraint
type LowSimilarityQuery struct {
	ID              int64     `json:"id"`
	QueryType       int       `json:"query_type"`
	Col             string    `json:"col"`
	QueryContent    string    `json:"query_content"`
	SimilarityScore float64   `json:"similarity_score"`
	MetricType      string    `json:"metric_type"`
	Results         *string   `json:"results"`
	CreatedAt       time.Time `json:"created_at"`
}

// Feedback counters grouped by QA query
type FeedbackSummary struct {
	Query            string `json:"query"`
	SatisfiedCount   int64  `json:"satisfied_count"`
	UnsatisfiedCount int64  `json:"unsatisfied_count"`
	TotalCount       int64  `json:"total_count"`
}

// Number of no-result hits grouped by query
type NoResultSummary struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}
