package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkiryanov/feedbackadmin/internal/apperrors"
	"github.com/nkiryanov/feedbackadmin/internal/models"
	"github.com/nkiryanov/feedbackadmin/internal/repository"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	// Has to return apperrors.ErrBadPassword on mismatch and apperrors.ErrPasswordHash if hash is unusable
	Compare(hashedPassword string, password string) error
}

// Issues and verifies access tokens
type TokenManager interface {
	Issue(subject string) (models.IssuedToken, error)

	// Has to return one of apperrors token errors if token is not valid
	Verify(token string) (subject string, err error)
}

type Config struct {
	// Hasher to compare user passwords
	// BcryptHasher is used if not set
	Hasher PasswordHasher
}

// Auth service
type AuthService struct {
	// Manager to issue and verify access tokens
	tokens TokenManager

	// hasher to compare user passwords
	hasher PasswordHasher

	// Compared against when the user is missing, so both failures cost the same
	dummyHash string

	sessions repository.Sessions
}

func NewService(cfg Config, tokens TokenManager, sessions repository.Sessions) (*AuthService, error) {
	if tokens == nil || sessions == nil {
		return nil, errors.New("token manager and sessions must not be nil")
	}

	// Set default bcrypt hasher if not provided by user
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	dummyHash, err := hasher.Hash("dummy-password-never-matches")
	if err != nil {
		return nil, fmt.Errorf("can't prepare dummy hash: %w", err)
	}

	return &AuthService{
		tokens:    tokens,
		hasher:    hasher,
		dummyHash: dummyHash,
		sessions:  sessions,
	}, nil
}

// Check username and password pair
// Returns apperrors.ErrUserNotFound or apperrors.ErrBadPassword if credentials are wrong
func (s *AuthService) Authenticate(ctx context.Context, username string, password string) (models.User, error) {
	var user models.User

	err := s.sessions.WithSession(ctx, func(storage repository.Storage) error {
		var err error
		user, err = storage.User().GetUserByUsername(ctx, username)
		return err
	})

	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		_ = s.hasher.Compare(s.dummyHash, password)
		return models.User{}, err
	case err != nil:
		return models.User{}, fmt.Errorf("user lookup failed: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.User{}, err
	}

	return user, nil
}

// Authenticate user and issue access token for him
func (s *AuthService) Login(ctx context.Context, username string, password string) (models.IssuedToken, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return models.IssuedToken{}, err
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return token, nil
}

// Verify access token and load the user it was issued for
// Token errors are returned as is; apperrors.ErrUserNotFound if user was deleted after the token was issued
func (s *AuthService) UserFromToken(ctx context.Context, token string) (models.User, error) {
	username, err := s.tokens.Verify(token)
	if err != nil {
		return models.User{}, err
	}

	var user models.User
	err = s.sessions.WithSession(ctx, func(storage repository.Storage) error {
		var err error
		user, err = storage.User().GetUserByUsername(ctx, username)
		return err
	})
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}
