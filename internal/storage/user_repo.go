package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// UserStore defines the interface for user lookups.
type UserStore interface {
	// Get fetches a user by ID. Returns nil and ErrNotFound if not found.
	Get(ctx context.Context, id string) (*UserRecord, error)
	// GetByEmail fetches a user by email. Returns nil and ErrNotFound if not found.
	GetByEmail(ctx context.Context, email string) (*UserRecord, error)
	// Create inserts a new user, assigning a UUID if the ID is empty.
	Create(ctx context.Context, u *UserRecord) error
}

// UserRepo provides methods for user operations.
// It implements the UserStore interface.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Get fetches a user by ID.
func (r *UserRepo) Get(ctx context.Context, id string) (*UserRecord, error) {
	return r.getWhere(ctx, "id = ?", id)
}

// GetByEmail fetches a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*UserRecord, error) {
	return r.getWhere(ctx, "email = ?", email)
}

func (r *UserRepo) getWhere(ctx context.Context, where string, arg any) (*UserRecord, error) {
	var u UserRecord
	var createdAt string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, name, created_at FROM users WHERE "+where, arg,
	).Scan(&u.ID, &u.Email, &u.Name, &createdAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	u.CreatedAt, err = parseDBTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}

	return &u, nil
}

// Create inserts a new user.
func (r *UserRepo) Create(ctx context.Context, u *UserRecord) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (id, email, name) VALUES (?, ?, ?)",
		u.ID, u.Email, u.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}
