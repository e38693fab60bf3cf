package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/feedbackadmin/internal/apperrors"
	"github.com/nkiryanov/feedbackadmin/internal/models"
)

const (
	defaultAccessTokenTTL = 120 * time.Minute
	defaultSigningMethod  = "HS256"
)

// Token manager with sensible default
type Config struct {
	// Secret key to sign access token
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm: HS256, HS384 or HS512
	// If not set than default is used
	Alg string

	// Access token lifetime
	// If not set than default is used
	AccessTTL time.Duration

	// Clock, time.Now if not set
	Now func() time.Time
}

type TokenManager struct {
	// Secret key to sign access token
	key []byte

	// JWT MAC (Message Authentication Code) algorithm
	alg jwt.SigningMethod

	accessTTL time.Duration
	now       func() time.Time
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg, ok := jwt.GetSigningMethod(cfg.Alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q, only HMAC family allowed", cfg.Alg)
	}

	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = defaultAccessTokenTTL
	}
	if cfg.AccessTTL < 0 {
		return nil, errors.New("access token ttl must be positive")
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &TokenManager{
		key:       []byte(cfg.SecretKey),
		alg:       alg,
		accessTTL: cfg.AccessTTL,
		now:       cfg.Now,
	}, nil
}

// Issue signed access token for the subject (username)
func (m *TokenManager) Issue(subject string) (models.IssuedToken, error) {
	now := m.now().Truncate(time.Second)
	expiresAt := now.Add(m.accessTTL)

	token := jwt.NewWithClaims(
		m.alg,
		jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	)
	access, err := token.SignedString(m.key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return models.IssuedToken{Value: access, ExpiresAt: expiresAt}, nil
}

// Verify access token and return its subject
// Errors are one of apperrors.ErrTokenMalformed, ErrTokenSignature or ErrTokenExpired
func (m *TokenManager) Verify(access string) (subject string, err error) {
	claims := &jwt.RegisteredClaims{}

	_, err = jwt.ParseWithClaims(
		access,
		claims,
		func(t *jwt.Token) (any, error) {
			return m.key, nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", fmt.Errorf("%w: %w", apperrors.ErrTokenSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", fmt.Errorf("%w: %w", apperrors.ErrTokenExpired, err)
	default:
		return "", fmt.Errorf("%w: %w", apperrors.ErrTokenMalformed, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: subject is missing", apperrors.ErrTokenMalformed)
	}

	return claims.Subject, nil
}
