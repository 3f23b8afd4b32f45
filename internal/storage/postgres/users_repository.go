package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherhub/server/internal/domain/users"
)

var _ users.Repository = (*UserRepository)(nil)

type UserRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func (r *UserRepository) Create(ctx context.Context, params users.CreateParams) (users.User, error) {
	ctx, cancel := boundContext(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
INSERT INTO users (email, full_name, password_hash)
VALUES ($1, $2, $3)
RETURNING id, email, full_name, password_hash, is_active, created_at
`, params.Email, params.FullName, params.PasswordHash)

	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err, "users_email_lower_key") {
			return users.User{}, users.ErrEmailTaken
		}
		return users.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	ctx, cancel := boundContext(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
SELECT id, email, full_name, password_hash, is_active, created_at
  FROM users
 WHERE lower(email) = lower($1)
`, email)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

func scanUser(row pgx.Row) (users.User, error) {
	var user users.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.IsActive,
		&user.CreatedAt,
	)
	return user, err
}
