package utils

import (
	"context"

	"github.com/sbilibin2017/gw-credit-sum/internal/models"
)

type contextKey string

const ContextUserKey contextKey = "user"

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, ContextUserKey, user)
}

func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(ContextUserKey).(*models.User)
	return user, ok && user != nil
}
