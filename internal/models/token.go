package models

import (
	"time"
)

const TokenTypeBearer = "bearer"

// Access token issued by TokenManager
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}
