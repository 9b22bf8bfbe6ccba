package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-credit-sum/internal/logger"
	"github.com/sbilibin2017/gw-credit-sum/internal/models"
)

//go:generate mockgen -source=guard.go -destination=guard_mock.go -package=services

// TokenVerifier resolves a session token to its subject.
type TokenVerifier interface {
	GetUserID(ctx context.Context, tokenString string) (uuid.UUID, error)
}

// GuardService resolves bearer tokens to principals and checks their role.
type GuardService struct {
	tokens TokenVerifier
	users  UserReader
}

// NewGuardService creates a new GuardService.
func NewGuardService(tokens TokenVerifier, users UserReader) *GuardService {
	return &GuardService{tokens: tokens, users: users}
}

// RequireAuthenticated returns the active user owning token.
// Any failure is reported as ErrUnauthorized.
func (g *GuardService) RequireAuthenticated(ctx context.Context, token string) (*models.User, error) {
	userID, err := g.tokens.GetUserID(ctx, token)
	if err != nil {
		logger.Log.Infow("token rejected", "err", err)
		return nil, ErrUnauthorized
	}

	user, err := g.users.GetByID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to load user", "userID", userID, "err", err)
		return nil, err
	}
	if user == nil || !user.IsActive {
		logger.Log.Infow("token subject missing or inactive", "userID", userID)
		return nil, ErrUnauthorized
	}

	return user, nil
}

// RequireSuperuser is RequireAuthenticated followed by a superuser check.
func (g *GuardService) RequireSuperuser(ctx context.Context, token string) (*models.User, error) {
	user, err := g.RequireAuthenticated(ctx, token)
	if err != nil {
		return nil, err
	}
	if !user.IsSuperuser {
		logger.Log.Infow("superuser required", "userID", user.ID)
		return nil, ErrNotSuperuser
	}
	return user, nil
}
