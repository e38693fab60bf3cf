// Package userctx carries the authenticated user from the auth gate to handlers
package userctx

import (
	"context"

	"github.com/nkiryanov/feedbackadmin/internal/models"
)

type userKey struct{}

// Return copy of ctx holding the authenticated user
func New(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// Return user set by auth gate; false on routes without the gate
func FromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey{}).(models.User)
	return u, ok
}
