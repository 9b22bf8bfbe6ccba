package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-credit-sum/internal/logger"
	"github.com/sbilibin2017/gw-credit-sum/internal/models"
	"github.com/sbilibin2017/gw-credit-sum/internal/repositories"
)

// Page size limits for user listings.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500
)

// UserPatch is an administrative change to a user. Nil fields are left as is.
type UserPatch struct {
	Email       *string
	Password    *string
	IsActive    *bool
	IsVerified  *bool
	IsSuperuser *bool
}

// UserService implements profile reads and superuser user management.
type UserService struct {
	reader         UserReader
	writer         UserWriter
	credits        CreditEnsurer
	defaultCredits int
}

// NewUserService creates a new UserService. defaultCredits is reported for
// users listed before their balance exists.
func NewUserService(reader UserReader, writer UserWriter, credits CreditEnsurer, defaultCredits int) *UserService {
	return &UserService{
		reader:         reader,
		writer:         writer,
		credits:        credits,
		defaultCredits: defaultCredits,
	}
}

// Me returns user with its credit balance, creating the balance if needed.
func (s *UserService) Me(ctx context.Context, user *models.User) (*models.UserWithCredits, error) {
	return s.withCredits(ctx, user)
}

func (s *UserService) withCredits(ctx context.Context, user *models.User) (*models.UserWithCredits, error) {
	credits, err := s.credits.Ensure(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &models.UserWithCredits{User: *user, Credits: credits}, nil
}

// List returns a page of users.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]models.UserWithCredits, error) {
	if limit < 1 || limit > MaxPageLimit || offset < 0 {
		return nil, ErrInvalidPagination
	}

	users, err := s.reader.List(ctx, limit, offset, s.defaultCredits)
	if err != nil {
		logger.Log.Errorw("failed to list users", "err", err)
		return nil, err
	}
	return users, nil
}

// Get returns the user with the given id.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.UserWithCredits, error) {
	user, err := s.reader.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get user", "userID", id, "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.withCredits(ctx, user)
}

// Update applies patch to the user with the given id.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, patch UserPatch) (*models.UserWithCredits, error) {
	upd := models.UserUpdate{
		IsActive:    patch.IsActive,
		IsVerified:  patch.IsVerified,
		IsSuperuser: patch.IsSuperuser,
	}

	if patch.Email != nil {
		email, err := NormalizeEmail(*patch.Email)
		if err != nil {
			return nil, err
		}
		upd.Email = &email
	}

	if patch.Password != nil {
		if err := ValidatePassword(*patch.Password); err != nil {
			return nil, err
		}
		hashed, err := hashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = &hashed
	}

	user, err := s.writer.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		logger.Log.Errorw("failed to update user", "userID", id, "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	logger.Log.Infow("user updated", "userID", id)
	return s.withCredits(ctx, user)
}

// Delete removes the user with the given id on behalf of actorID.
// Principals cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return ErrSelfDeletion
	}

	deleted, err := s.writer.Delete(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to delete user", "userID", id, "err", err)
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}

	logger.Log.Infow("user deleted", "userID", id, "by", actorID)
	return nil
}
