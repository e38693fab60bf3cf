package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/feedbackadmin/internal/apperrors"
)

// Cost the dashboard users table is written with (python bcrypt.gensalt default)
// The dummy hash for unknown users is made with it too, so both login failures take the same time
const DefaultCost = 12

// Bcrypt password hasher
// Will be used as default one if user not provide it's own
// Zero Cost means DefaultCost
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(hash), err
}

// Compare stored hash with the password in constant time
// Stored hashes may be padded with whitespace, it is trimmed before comparing
func (h BcryptHasher) Compare(hashedPassword string, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(hashedPassword)), []byte(password))

	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return apperrors.ErrBadPassword
	default:
		return fmt.Errorf("%w: %w", apperrors.ErrPasswordHash, err)
	}
}

var DefaultHasher PasswordHasher = BcryptHasher{}
