package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// CreditRepository stores per-user credit balances.
type CreditRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewCreditRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *CreditRepository {
	return &CreditRepository{db: db, txGetter: txGetter}
}

// Ensure creates the balance row with initial credits if it is missing and
// returns the current balance. Existing balances are left untouched.
func (r *CreditRepository) Ensure(ctx context.Context, userID uuid.UUID, initial int) (int, error) {
	const query = `
		INSERT INTO user_credits (user_id, credits, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET credits = user_credits.credits
		RETURNING credits
	`

	var balance int
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &balance, query, userID, initial)

	logQuery(query, []any{userID, initial}, balance, err)

	if err != nil {
		return 0, translateError(err)
	}
	return balance, nil
}

// Debit subtracts amount in a single conditional statement. When the row is
// missing or holds less than amount nothing changes and ErrInsufficientBalance
// is returned.
func (r *CreditRepository) Debit(ctx context.Context, userID uuid.UUID, amount int) (int, error) {
	const query = `
		UPDATE user_credits
		SET credits = credits - $2, updated_at = NOW()
		WHERE user_id = $1 AND credits >= $2
		RETURNING credits
	`

	var balance int
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &balance, query, userID, amount)

	logQuery(query, []any{userID, amount}, balance, err)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrInsufficientBalance
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// Set overwrites the balance, creating the row if needed.
func (r *CreditRepository) Set(ctx context.Context, userID uuid.UUID, amount int) (int, error) {
	const query = `
		INSERT INTO user_credits (user_id, credits, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET credits = EXCLUDED.credits, updated_at = NOW()
		RETURNING credits
	`

	var balance int
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &balance, query, userID, amount)

	logQuery(query, []any{userID, amount}, balance, err)

	if err != nil {
		return 0, translateError(err)
	}
	return balance, nil
}
