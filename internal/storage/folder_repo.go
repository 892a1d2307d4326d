package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// FolderStore defines the interface for folder tree operations.
type FolderStore interface {
	// Get fetches a folder by ID. Returns nil and ErrNotFound if not found.
	Get(ctx context.Context, id string) (*FolderRecord, error)
	// Insert inserts a new folder, assigning a UUID if the ID is empty.
	Insert(ctx context.Context, f *FolderRecord) error
	// ListByCorpus returns all folders of a corpus ordered by path.
	ListByCorpus(ctx context.Context, corpusID string) ([]*FolderRecord, error)
}

// FolderRepo provides methods for folder operations.
// It implements the FolderStore interface.
type FolderRepo struct {
	db *sql.DB
}

// NewFolderRepo creates a new FolderRepo.
func NewFolderRepo(db *sql.DB) *FolderRepo {
	return &FolderRepo{db: db}
}

const folderColumns = "id, corpus_id, name, description, color, icon, tags_json, is_visible, parent_id, path"

func scanFolder(scan func(dest ...any) error) (*FolderRecord, error) {
	var f FolderRecord
	var parentID sql.NullString

	err := scan(&f.ID, &f.CorpusID, &f.Name, &f.Description, &f.Color, &f.Icon,
		&f.TagsJSON, &f.IsVisible, &parentID, &f.Path)
	if err != nil {
		return nil, err
	}

	f.ParentID = strOf(parentID)
	return &f, nil
}

// Get fetches a folder by ID.
func (r *FolderRepo) Get(ctx context.Context, id string) (*FolderRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+folderColumns+" FROM folders WHERE id = ?", id,
	)

	f, err := scanFolder(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query folder: %w", err)
	}
	return f, nil
}

// Insert inserts a new folder.
func (r *FolderRepo) Insert(ctx context.Context, f *FolderRecord) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.TagsJSON == "" {
		f.TagsJSON = "[]"
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO folders (id, corpus_id, name, description, color, icon, tags_json, is_visible, parent_id, path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.CorpusID, f.Name, f.Description, f.Color, f.Icon,
		f.TagsJSON, f.IsVisible, nullable(f.ParentID), f.Path,
	)
	if err != nil {
		return fmt.Errorf("failed to insert folder: %w", err)
	}

	return nil
}

// ListByCorpus returns all folders of a corpus ordered by path.
func (r *FolderRepo) ListByCorpus(ctx context.Context, corpusID string) ([]*FolderRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+folderColumns+" FROM folders WHERE corpus_id = ? ORDER BY path", corpusID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var folders []*FolderRecord
	for rows.Next() {
		f, err := scanFolder(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		folders = append(folders, f)
	}

	return folders, rows.Err()
}
