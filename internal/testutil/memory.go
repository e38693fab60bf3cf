package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/nkiryanov/feedbackadmin/internal/apperrors"
	"github.com/nkiryanov/feedbackadmin/internal/models"
	"github.com/nkiryanov/feedbackadmin/internal/repository"
)

// In-memory storage for service and handler tests.
// When Err is set every repository call fails with it.
type MemoryStorage struct {
	mu sync.Mutex

	Users             map[string]models.User
	FeedbackSummaries []models.FeedbackSummary
	QALogs            []models.QALog
	LowSimilarity     []models.LowSimilarityQuery
	NoResults         []models.NoResultSummary

	Err error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{Users: make(map[string]models.User)}
}

func (s *MemoryStorage) User() repository.UserRepo {
	return memoryUsers{s}
}

func (s *MemoryStorage) Report() repository.ReportRepo {
	return memoryReports{s}
}

// Put user directly, replacing the one with the same username
func (s *MemoryStorage) AddUser(username string, hashedPassword string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := models.User{
		ID:             int64(len(s.Users) + 1),
		CreatedAt:      time.Now(),
		Username:       username,
		HashedPassword: hashedPassword,
	}
	s.Users[username] = u
	return u
}

func (s *MemoryStorage) DeleteUser(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Users, username)
}

type memoryUsers struct{ s *MemoryStorage }

func (r memoryUsers) CreateUser(ctx context.Context, username string, hashedPassword string) (models.User, error) {
	if r.s.Err != nil {
		return models.User{}, r.s.Err
	}

	r.s.mu.Lock()
	_, ok := r.s.Users[username]
	r.s.mu.Unlock()
	if ok {
		return models.User{}, apperrors.ErrUserAlreadyExists
	}

	return r.s.AddUser(username, hashedPassword), nil
}

func (r memoryUsers) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	if r.s.Err != nil {
		return models.User{}, r.s.Err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.Users[username]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return u, nil
}

type memoryReports struct{ s *MemoryStorage }

func (r memoryReports) FeedbackSummary(ctx context.Context, limit int) ([]models.FeedbackSummary, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	return page(r.s.FeedbackSummaries, 0, limit), nil
}

func (r memoryReports) ListQALogs(ctx context.Context, f repository.QALogFilter) ([]models.QALog, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	found := make([]models.QALog, 0, len(r.s.QALogs))
	for _, l := range r.s.QALogs {
		if f.Search == "" || strings.Contains(strings.ToLower(l.Query), strings.ToLower(f.Search)) {
			found = append(found, l)
		}
	}
	return page(found, f.Skip, f.Limit), nil
}

func (r memoryReports) ListLowSimilarity(ctx context.Context, f repository.LowSimilarityFilter) ([]models.LowSimilarityQuery, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	found := make([]models.LowSimilarityQuery, 0, len(r.s.LowSimilarity))
	for _, q := range r.s.LowSimilarity {
		if f.MinScore != nil && q.SimilarityScore < *f.MinScore {
			continue
		}
		if f.MaxScore != nil && q.SimilarityScore > *f.MaxScore {
			continue
		}
		found = append(found, q)
	}
	return page(found, f.Skip, f.Limit), nil
}

func (r memoryReports) NoResultSummary(ctx context.Context, limit int) ([]models.NoResultSummary, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	return page(r.s.NoResults, 0, limit), nil
}

func page[T any](items []T, skip int, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}

// Sessions over MemoryStorage that count acquired and released sessions
type MemorySessions struct {
	Storage    *MemoryStorage
	AcquireErr error // when set WithSession fails without calling fn

	mu       sync.Mutex
	acquired int
	released int
}

func NewMemorySessions(storage *MemoryStorage) *MemorySessions {
	return &MemorySessions{Storage: storage}
}

func (s *MemorySessions) WithSession(ctx context.Context, fn func(repository.Storage) error) error {
	if s.AcquireErr != nil {
		return s.AcquireErr
	}

	s.mu.Lock()
	s.acquired++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.released++
		s.mu.Unlock()
	}()

	return fn(s.Storage)
}

func (s *MemorySessions) Acquired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acquired
}

func (s *MemorySessions) Released() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}
