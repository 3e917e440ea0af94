package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/craigsandeman1/fitmom-payments/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	pool Pool
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(pool Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// GetByEmail fetches a user by email. Returns nil, nil when absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`

	u := &domain.User{}
	err := r.pool.QueryRow(ctx, query, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// RoleRepo implements ports.RoleLookup against the user_roles table.
type RoleRepo struct {
	pool Pool
}

// NewRoleRepo creates a new RoleRepo.
func NewRoleRepo(pool Pool) *RoleRepo {
	return &RoleRepo{pool: pool}
}

// IsAdmin reports whether the user holds the admin role.
func (r *RoleRepo) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM user_roles WHERE user_id = $1 AND role = 'admin')`

	var isAdmin bool
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&isAdmin); err != nil {
		return false, fmt.Errorf("check admin role: %w", err)
	}
	return isAdmin, nil
}
