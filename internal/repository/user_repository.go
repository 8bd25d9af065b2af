package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stationgames/trivia-backend/internal/model"
)

// UserRepository handles player data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Upsert registers a user by email (lowercased). Re-registering refreshes the
// display name and returns the existing row, so registration is idempotent.
func (r *UserRepository) Upsert(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(u.Email)
	return r.pool.QueryRow(ctx,
		`INSERT INTO users (email, display_name)
		 VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE SET display_name = EXCLUDED.display_name
		 RETURNING id, created_at`,
		u.Email, u.DisplayName,
	).Scan(&u.ID, &u.CreatedAt)
}

// GetByEmail retrieves a user by (lowercased) email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, display_name, created_at
		 FROM users
		 WHERE email = $1`, strings.ToLower(email),
	).Scan(&u.ID, &u.Email, &u.DisplayName, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}
