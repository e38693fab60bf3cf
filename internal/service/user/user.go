package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkiryanov/feedbackadmin/internal/models"
	"github.com/nkiryanov/feedbackadmin/internal/repository"
	"github.com/nkiryanov/feedbackadmin/internal/service/auth"
)

// bcrypt ignores everything after 72 bytes
const maxPasswordLen = 72

var (
	ErrEmptyUsername   = errors.New("username must not be empty")
	ErrInvalidPassword = fmt.Errorf("password must be 1..%d bytes long", maxPasswordLen)
)

// Operator side user management, the API itself never creates users
type UserService struct {
	hasher   auth.PasswordHasher
	sessions repository.Sessions
}

func NewService(hasher auth.PasswordHasher, sessions repository.Sessions) *UserService {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	return &UserService{
		hasher:   hasher,
		sessions: sessions,
	}
}

func (s *UserService) CreateUser(ctx context.Context, username string, password string) (models.User, error) {
	var user models.User

	if username == "" {
		return user, ErrEmptyUsername
	}
	if password == "" || len(password) > maxPasswordLen {
		return user, ErrInvalidPassword
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	err = s.sessions.WithSession(ctx, func(storage repository.Storage) error {
		user, err = storage.User().CreateUser(ctx, username, hash)
		return err
	})
	if err != nil {
		return user, fmt.Errorf("can't create user. Err: %w", err)
	}

	return user, nil
}
