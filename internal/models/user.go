package models

import (
	"time"
)

// Dashboard operator; the bcrypt hash never leaves the service in JSON
type User struct {
	ID             int64     `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
}
