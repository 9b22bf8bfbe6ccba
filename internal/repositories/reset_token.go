package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-credit-sum/internal/logger"
)

const resetTokenPrefix = "reset_password:"

// ResetTokenRepository keeps one-time password reset tokens in Redis
type ResetTokenRepository struct {
	client *redis.Client
	exp    time.Duration // lifetime of a token
}

// NewResetTokenRepository creates a new repository; tokens expire after expiration.
func NewResetTokenRepository(client *redis.Client, expiration time.Duration) *ResetTokenRepository {
	return &ResetTokenRepository{
		client: client,
		exp:    expiration,
	}
}

// Save binds token to userID until it expires.
func (r *ResetTokenRepository) Save(ctx context.Context, token string, userID uuid.UUID) error {
	key := resetTokenPrefix + token
	err := r.client.Set(ctx, key, userID.String(), r.exp).Err()

	logger.Log.Infow("redis set",
		"key", resetTokenPrefix+"***",
		"user_id", userID,
		"ttl", r.exp,
		"error", err,
	)

	return err
}

// Consume atomically reads and deletes token. It returns uuid.Nil when the
// token is unknown, expired or already used.
func (r *ResetTokenRepository) Consume(ctx context.Context, token string) (uuid.UUID, error) {
	key := resetTokenPrefix + token
	val, err := r.client.GetDel(ctx, key).Result()

	logger.Log.Infow("redis getdel",
		"key", resetTokenPrefix+"***",
		"result", val,
		"error", err,
	)

	if errors.Is(err, redis.Nil) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, nil
	}
	return userID, nil
}
