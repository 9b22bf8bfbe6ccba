package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-credit-sum/internal/models"
)

const userColumns = `id, email, password_hash, is_active, is_verified, is_superuser, created_at, updated_at`

// UserReadRepository handles user read operations
type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetByEmail returns the user with the given (already case-folded) email, or nil.
func (r *UserReadRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

// GetByID returns the user with the given id, or nil.
func (r *UserReadRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *UserReadRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, query, arg)

	logQuery(query, []any{arg}, user, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns a page of users ordered by creation time together with their
// balances. Users without a balance row report defaultCredits.
func (r *UserReadRepository) List(ctx context.Context, limit, offset, defaultCredits int) ([]models.UserWithCredits, error) {
	const query = `
		SELECT u.id, u.email, u.password_hash, u.is_active, u.is_verified, u.is_superuser,
		       u.created_at, u.updated_at, COALESCE(c.credits, $3) AS credits
		FROM users u
		LEFT JOIN user_credits c ON c.user_id = u.id
		ORDER BY u.created_at, u.id
		LIMIT $1 OFFSET $2
	`

	users := []models.UserWithCredits{}
	err := r.db.SelectContext(ctx, &users, query, limit, offset, defaultCredits)

	logQuery(query, []any{limit, offset, defaultCredits}, len(users), err)

	if err != nil {
		return nil, err
	}
	return users, nil
}

// UserWriteRepository handles user write operations
type UserWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewUserWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *UserWriteRepository {
	return &UserWriteRepository{db: db, txGetter: txGetter}
}

// Create inserts user and fills its timestamps. A taken email yields ErrDuplicate.
func (r *UserWriteRepository) Create(ctx context.Context, user *models.User) error {
	const query = `
		INSERT INTO users (id, email, password_hash, is_active, is_verified, is_superuser, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := executor(ctx, r.db, r.txGetter).
		QueryRowxContext(ctx, query, user.ID, user.Email, user.PasswordHash, user.IsActive, user.IsVerified, user.IsSuperuser).
		Scan(&user.CreatedAt, &user.UpdatedAt)

	logQuery(query, []any{user.ID, user.Email, "***", user.IsActive, user.IsVerified, user.IsSuperuser}, user.CreatedAt, err)

	return translateError(err)
}

// Update applies the non-nil fields of upd and returns the updated user, or
// nil when no user has that id.
func (r *UserWriteRepository) Update(ctx context.Context, id uuid.UUID, upd models.UserUpdate) (*models.User, error) {
	const query = `
		UPDATE users SET
			email = COALESCE($2::VARCHAR, email),
			password_hash = COALESCE($3::VARCHAR, password_hash),
			is_active = COALESCE($4::BOOLEAN, is_active),
			is_verified = COALESCE($5::BOOLEAN, is_verified),
			is_superuser = COALESCE($6::BOOLEAN, is_superuser),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, email, password_hash, is_active, is_verified, is_superuser, created_at, updated_at
	`

	var hashArg any = "<unchanged>"
	if upd.PasswordHash != nil {
		hashArg = "***"
	}

	var user models.User
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &user, query,
		id, upd.Email, upd.PasswordHash, upd.IsActive, upd.IsVerified, upd.IsSuperuser)

	logQuery(query, []any{id, upd.Email, hashArg, upd.IsActive, upd.IsVerified, upd.IsSuperuser}, user, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// Delete removes the user with the given id and reports whether a row was deleted.
// The credit balance goes with it through the foreign key cascade.
func (r *UserWriteRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	const query = `DELETE FROM users WHERE id = $1`

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, id)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logQuery(query, []any{id}, rowsAffected, err)

	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}
