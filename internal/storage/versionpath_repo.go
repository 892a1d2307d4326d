package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// VersionPathStore defines the interface for version tree operations.
type VersionPathStore interface {
	// Insert inserts a new version path, assigning a UUID if the ID is empty.
	Insert(ctx context.Context, vp *VersionPathRecord) error
	// ListByCorpus returns the full version history of a corpus ordered by
	// (path, version_number).
	ListByCorpus(ctx context.Context, corpusID string) ([]*VersionPathRecord, error)
	// ListCurrentByCorpus returns the live version paths of a corpus:
	// is_current and not soft-deleted.
	ListCurrentByCorpus(ctx context.Context, corpusID string) ([]*VersionPathRecord, error)
}

// VersionPathRepo provides methods for version path operations.
// It implements the VersionPathStore interface.
type VersionPathRepo struct {
	db *sql.DB
}

// NewVersionPathRepo creates a new VersionPathRepo.
func NewVersionPathRepo(db *sql.DB) *VersionPathRepo {
	return &VersionPathRepo{db: db}
}

const versionPathColumns = "id, corpus_id, document_id, folder_id, path, version_number, parent_id, is_current, is_deleted, created_at"

func scanVersionPath(scan func(dest ...any) error) (*VersionPathRecord, error) {
	var vp VersionPathRecord
	var folderID, parentID sql.NullString
	var createdAt string

	err := scan(&vp.ID, &vp.CorpusID, &vp.DocumentID, &folderID, &vp.Path,
		&vp.VersionNumber, &parentID, &vp.IsCurrent, &vp.IsDeleted, &createdAt)
	if err != nil {
		return nil, err
	}

	vp.FolderID = strOf(folderID)
	vp.ParentID = strOf(parentID)
	vp.CreatedAt, err = parseDBTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	return &vp, nil
}

// Insert inserts a new version path. A zero CreatedAt is filled by the
// database; a non-zero one is preserved (needed for history imports).
func (r *VersionPathRepo) Insert(ctx context.Context, vp *VersionPathRecord) error {
	if vp.ID == "" {
		vp.ID = uuid.New().String()
	}

	createdAt := any(nil)
	if !vp.CreatedAt.IsZero() {
		createdAt = formatDBTime(vp.CreatedAt)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO version_paths (id, corpus_id, document_id, folder_id, path, version_number,
		                            parent_id, is_current, is_deleted, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))`,
		vp.ID, vp.CorpusID, vp.DocumentID, nullable(vp.FolderID), vp.Path, vp.VersionNumber,
		nullable(vp.ParentID), vp.IsCurrent, vp.IsDeleted, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert version path: %w", err)
	}

	return nil
}

// ListByCorpus returns the full version history of a corpus.
func (r *VersionPathRepo) ListByCorpus(ctx context.Context, corpusID string) ([]*VersionPathRecord, error) {
	return r.list(ctx,
		"SELECT "+versionPathColumns+" FROM version_paths WHERE corpus_id = ? ORDER BY path, version_number",
		corpusID,
	)
}

// ListCurrentByCorpus returns the live version paths of a corpus.
func (r *VersionPathRepo) ListCurrentByCorpus(ctx context.Context, corpusID string) ([]*VersionPathRecord, error) {
	return r.list(ctx,
		"SELECT "+versionPathColumns+` FROM version_paths
		 WHERE corpus_id = ? AND is_current = 1 AND is_deleted = 0 ORDER BY path`,
		corpusID,
	)
}

func (r *VersionPathRepo) list(ctx context.Context, query string, args ...any) ([]*VersionPathRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list version paths: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var paths []*VersionPathRecord
	for rows.Next() {
		vp, err := scanVersionPath(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan version path: %w", err)
		}
		paths = append(paths, vp)
	}

	return paths, rows.Err()
}
