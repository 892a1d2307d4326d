package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// StructuralSetStore defines the interface for structural set operations.
// At most one structural set exists per content hash.
type StructuralSetStore interface {
	// Get fetches a structural set by ID. Returns nil and ErrNotFound if not found.
	Get(ctx context.Context, id string) (*StructuralSetRecord, error)
	// GetByHash fetches the structural set for a content hash.
	// Returns nil and ErrNotFound if no set with that hash exists.
	GetByHash(ctx context.Context, fileHash string) (*StructuralSetRecord, error)
	// Create inserts a new structural set, assigning a UUID if the ID is empty.
	Create(ctx context.Context, set *StructuralSetRecord) error
}

// StructuralSetRepo provides methods for structural set operations.
// It implements the StructuralSetStore interface.
type StructuralSetRepo struct {
	db *sql.DB
}

// NewStructuralSetRepo creates a new StructuralSetRepo.
func NewStructuralSetRepo(db *sql.DB) *StructuralSetRepo {
	return &StructuralSetRepo{db: db}
}

// Get fetches a structural set by ID.
func (r *StructuralSetRepo) Get(ctx context.Context, id string) (*StructuralSetRecord, error) {
	return r.getWhere(ctx, "id = ?", id)
}

// GetByHash fetches the structural set for a content hash.
func (r *StructuralSetRepo) GetByHash(ctx context.Context, fileHash string) (*StructuralSetRecord, error) {
	return r.getWhere(ctx, "file_hash = ?", fileHash)
}

func (r *StructuralSetRepo) getWhere(ctx context.Context, where string, arg any) (*StructuralSetRecord, error) {
	var set StructuralSetRecord

	err := r.db.QueryRowContext(ctx,
		"SELECT id, file_hash FROM structural_sets WHERE "+where, arg,
	).Scan(&set.ID, &set.FileHash)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query structural set: %w", err)
	}

	return &set, nil
}

// Create inserts a new structural set.
func (r *StructuralSetRepo) Create(ctx context.Context, set *StructuralSetRecord) error {
	if set.ID == "" {
		set.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO structural_sets (id, file_hash) VALUES (?, ?)",
		set.ID, set.FileHash,
	)
	if err != nil {
		return fmt.Errorf("failed to insert structural set: %w", err)
	}

	return nil
}
