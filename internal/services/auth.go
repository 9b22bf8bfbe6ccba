package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-credit-sum/internal/logger"
	"github.com/sbilibin2017/gw-credit-sum/internal/models"
	"github.com/sbilibin2017/gw-credit-sum/internal/repositories"
	"github.com/segmentio/ksuid"
)

//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=services

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, limit, offset, defaultCredits int) ([]models.UserWithCredits, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uuid.UUID, upd models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// JWTGenerator defines an interface for generating JWT tokens.
type JWTGenerator interface {
	Generate(ctx context.Context, userID uuid.UUID) (string, error)
}

// CreditEnsurer lazily creates credit balances.
type CreditEnsurer interface {
	Ensure(ctx context.Context, userID uuid.UUID) (int, error)
}

// ResetTokenStore keeps one-time password reset tokens.
type ResetTokenStore interface {
	Save(ctx context.Context, token string, userID uuid.UUID) error
	Consume(ctx context.Context, token string) (uuid.UUID, error)
}

// ResetMailer delivers password reset tokens.
type ResetMailer interface {
	SendResetPassword(ctx context.Context, email, token string) error
}

// AuthService handles registration, login and password flows.
type AuthService struct {
	reader      UserReader
	writer      UserWriter
	credits     CreditEnsurer
	jwt         JWTGenerator
	resetTokens ResetTokenStore
	mailer      ResetMailer
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(
	reader UserReader,
	writer UserWriter,
	credits CreditEnsurer,
	jwt JWTGenerator,
	resetTokens ResetTokenStore,
	mailer ResetMailer,
) *AuthService {
	return &AuthService{
		reader:      reader,
		writer:      writer,
		credits:     credits,
		jwt:         jwt,
		resetTokens: resetTokens,
		mailer:      mailer,
	}
}

// Register creates an active, unverified, regular user with a fresh credit balance.
func (svc *AuthService) Register(ctx context.Context, email, password string) (*models.UserWithCredits, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	existing, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return nil, err
	}
	if existing != nil {
		logger.Log.Infow("user already exists", "email", email)
		return nil, ErrUserAlreadyExists
	}

	user, err := svc.createUser(ctx, email, password, false)
	if err != nil {
		return nil, err
	}

	credits, err := svc.credits.Ensure(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	logger.Log.Infow("user registered", "userID", user.ID)
	return &models.UserWithCredits{User: *user, Credits: credits}, nil
}

func (svc *AuthService) createUser(ctx context.Context, email, password string, superuser bool) (*models.User, error) {
	hashedPassword, err := hashPassword(password)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		IsActive:     true,
		IsVerified:   superuser,
		IsSuperuser:  superuser,
	}
	if err := svc.writer.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return nil, err
	}
	return user, nil
}

// Login authenticates an active user by email and password and returns a session token.
func (svc *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	email, err := NormalizeEmail(username)
	if err != nil {
		return "", ErrLoginBadCredentials
	}

	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", err
	}
	if user == nil || !checkPassword(user.PasswordHash, password) {
		logger.Log.Infow("invalid credentials", "email", email)
		return "", ErrLoginBadCredentials
	}
	if !user.IsActive {
		logger.Log.Infow("inactive user login", "userID", user.ID)
		return "", ErrLoginBadCredentials
	}

	token, err := svc.jwt.Generate(ctx, user.ID)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "err", err)
		return "", err
	}

	return token, nil
}

// ForgotPassword issues a reset token for an active user and mails it.
// Unknown or inactive addresses are ignored so callers cannot probe accounts.
func (svc *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email, err := NormalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return err
	}
	if user == nil || !user.IsActive {
		return nil
	}

	token := ksuid.New().String()
	if err := svc.resetTokens.Save(ctx, token, user.ID); err != nil {
		logger.Log.Errorw("failed to save reset token", "userID", user.ID, "err", err)
		return err
	}

	logger.Log.Infow("password reset requested", "userID", user.ID)
	if err := svc.mailer.SendResetPassword(ctx, user.Email, token); err != nil {
		logger.Log.Errorw("failed to send reset email", "userID", user.ID, "err", err)
	}
	return nil
}

// ResetPassword consumes token and sets a new password for its user.
// The password is checked first so a policy failure does not burn the token.
func (svc *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}

	userID, err := svc.resetTokens.Consume(ctx, token)
	if err != nil {
		logger.Log.Errorw("failed to consume reset token", "err", err)
		return err
	}
	if userID == uuid.Nil {
		return ErrResetTokenInvalid
	}

	user, err := svc.reader.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || !user.IsActive {
		return ErrResetTokenInvalid
	}

	if err := svc.setPassword(ctx, user.ID, password); err != nil {
		return err
	}
	logger.Log.Infow("password reset", "userID", user.ID)
	return nil
}

// ChangePassword replaces the password of user after checking the current one.
func (svc *AuthService) ChangePassword(ctx context.Context, user *models.User, currentPassword, newPassword string) error {
	if !checkPassword(user.PasswordHash, currentPassword) {
		logger.Log.Infow("wrong current password", "userID", user.ID)
		return ErrWrongCurrentPassword
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	return svc.setPassword(ctx, user.ID, newPassword)
}

func (svc *AuthService) setPassword(ctx context.Context, userID uuid.UUID, password string) error {
	hashed, err := hashPassword(password)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return err
	}

	updated, err := svc.writer.Update(ctx, userID, models.UserUpdate{PasswordHash: &hashed})
	if err != nil {
		logger.Log.Errorw("failed to update password", "userID", userID, "err", err)
		return err
	}
	if updated == nil {
		return ErrUserNotFound
	}
	return nil
}

// EnsureSuperuser makes sure an active, verified superuser with the given
// email exists. A missing account is created with password; an existing one
// is promoted and keeps its password.
func (svc *AuthService) EnsureSuperuser(ctx context.Context, email, password string) (*models.User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		if err := ValidatePassword(password); err != nil {
			return nil, err
		}
		if user, err = svc.createUser(ctx, email, password, true); err != nil {
			return nil, err
		}
		logger.Log.Infow("superuser created", "userID", user.ID)
	} else if !user.IsSuperuser || !user.IsActive || !user.IsVerified {
		yes := true
		user, err = svc.writer.Update(ctx, user.ID, models.UserUpdate{IsActive: &yes, IsVerified: &yes, IsSuperuser: &yes})
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
		logger.Log.Infow("user promoted to superuser", "userID", user.ID)
	}

	if _, err := svc.credits.Ensure(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}
