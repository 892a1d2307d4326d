package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// RevisionStore defines the interface for description revision history.
type RevisionStore interface {
	// Insert inserts a new revision, assigning a UUID if the ID is empty.
	Insert(ctx context.Context, rev *RevisionRecord) error
	// ListByCorpus returns a corpus's revision history ordered by version.
	ListByCorpus(ctx context.Context, corpusID string) ([]*RevisionRecord, error)
}

// RevisionRepo provides methods for description revision operations.
// It implements the RevisionStore interface.
type RevisionRepo struct {
	db *sql.DB
}

// NewRevisionRepo creates a new RevisionRepo.
func NewRevisionRepo(db *sql.DB) *RevisionRepo {
	return &RevisionRepo{db: db}
}

// Insert inserts a new revision. A zero CreatedAt is filled by the database;
// a non-zero one is preserved (needed for history imports).
func (r *RevisionRepo) Insert(ctx context.Context, rev *RevisionRecord) error {
	if rev.ID == "" {
		rev.ID = uuid.New().String()
	}

	createdAt := any(nil)
	if !rev.CreatedAt.IsZero() {
		createdAt = formatDBTime(rev.CreatedAt)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO description_revisions (id, corpus_id, version, content, author_id, created_at)
		 VALUES (?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))`,
		rev.ID, rev.CorpusID, rev.Version, rev.Content, nullable(rev.AuthorID), createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert revision: %w", err)
	}

	return nil
}

// ListByCorpus returns a corpus's revision history ordered by version.
func (r *RevisionRepo) ListByCorpus(ctx context.Context, corpusID string) ([]*RevisionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, corpus_id, version, content, author_id, created_at
		 FROM description_revisions WHERE corpus_id = ? ORDER BY version`,
		corpusID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var revisions []*RevisionRecord
	for rows.Next() {
		var rev RevisionRecord
		var authorID sql.NullString
		var createdAt string

		if err := rows.Scan(&rev.ID, &rev.CorpusID, &rev.Version, &rev.Content, &authorID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}

		rev.AuthorID = strOf(authorID)
		rev.CreatedAt, err = parseDBTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
		}
		revisions = append(revisions, &rev)
	}

	return revisions, rows.Err()
}
