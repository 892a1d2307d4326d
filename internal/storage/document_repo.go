package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// Get fetches a document by ID. Returns nil and ErrNotFound if not found.
	Get(ctx context.Context, id string) (*DocumentRecord, error)
	// Create inserts a new document, assigning a UUID if the ID is empty.
	Create(ctx context.Context, doc *DocumentRecord) error
	// SetBackendLock flips the write-in-progress flag.
	SetBackendLock(ctx context.Context, id string, locked bool) error
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Get fetches a document by ID.
func (r *DocumentRepo) Get(ctx context.Context, id string) (*DocumentRecord, error) {
	var d DocumentRecord
	var structuralSetID, creatorID sql.NullString
	var createdAt string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, file_name, file_key, file_hash, text_content,
		        structural_set_id, backend_lock, creator_id, created_at
		 FROM documents WHERE id = ?`, id,
	).Scan(&d.ID, &d.Title, &d.FileName, &d.FileKey, &d.FileHash, &d.TextContent,
		&structuralSetID, &d.BackendLock, &creatorID, &createdAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	d.StructuralSetID = strOf(structuralSetID)
	d.CreatorID = strOf(creatorID)
	d.CreatedAt, err = parseDBTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}

	return &d, nil
}

// Create inserts a new document.
func (r *DocumentRepo) Create(ctx context.Context, doc *DocumentRecord) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, title, file_name, file_key, file_hash, text_content,
		                        structural_set_id, backend_lock, creator_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Title, doc.FileName, doc.FileKey, doc.FileHash, doc.TextContent,
		nullable(doc.StructuralSetID), doc.BackendLock, nullable(doc.CreatorID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	return nil
}

// SetBackendLock flips the write-in-progress flag.
func (r *DocumentRepo) SetBackendLock(ctx context.Context, id string, locked bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE documents SET backend_lock = ? WHERE id = ?", locked, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set backend lock: %w", err)
	}
	return nil
}
