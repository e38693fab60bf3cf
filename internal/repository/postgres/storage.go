package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkiryanov/feedbackadmin/internal/repository"
)

// Satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) repository.Storage {
	return &Storage{db: db}
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{db: s.db}
}

func (s *Storage) Report() repository.ReportRepo {
	return &ReportRepo{db: s.db}
}

// Sessions backed by a connection pool: one acquired connection per WithSession call
type PoolSessions struct {
	pool *pgxpool.Pool
}

func NewSessions(pool *pgxpool.Pool) *PoolSessions {
	return &PoolSessions{pool: pool}
}

func (s *PoolSessions) WithSession(ctx context.Context, fn func(repository.Storage) error) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("db acquire error: %w", err)
	}
	defer conn.Release()

	return fn(NewStorage(conn))
}
