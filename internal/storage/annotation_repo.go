package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// AnnotationStore defines the interface for annotation storage operations.
type AnnotationStore interface {
	// Get fetches an annotation by ID. Returns nil and ErrNotFound if not found.
	Get(ctx context.Context, id string) (*AnnotationRecord, error)
	// Insert inserts a new annotation, assigning a UUID if the ID is empty.
	Insert(ctx context.Context, a *AnnotationRecord) error
	// SetParent wires the parent reference of an annotation.
	SetParent(ctx context.Context, id, parentID string) error
	// ListByDocumentAndCorpus returns a document's non-structural annotations
	// within one corpus, with label text and type populated.
	ListByDocumentAndCorpus(ctx context.Context, documentID, corpusID string) ([]*AnnotationRecord, error)
	// ListByStructuralSet returns a structural set's annotation forest,
	// with label text and type populated.
	ListByStructuralSet(ctx context.Context, structuralSetID string) ([]*AnnotationRecord, error)
}

// AnnotationRepo provides methods for annotation operations.
// It implements the AnnotationStore interface.
type AnnotationRepo struct {
	db *sql.DB
}

// NewAnnotationRepo creates a new AnnotationRepo.
func NewAnnotationRepo(db *sql.DB) *AnnotationRepo {
	return &AnnotationRepo{db: db}
}

const annotationColumns = `a.id, a.document_id, a.corpus_id, a.structural_set_id, a.label_id,
	a.parent_id, a.page, a.raw_text, a.bounds_json, a.is_structural, a.creator_id,
	l.text, l.label_type`

func scanAnnotation(scan func(dest ...any) error) (*AnnotationRecord, error) {
	var a AnnotationRecord
	var documentID, corpusID, structuralSetID, parentID, creatorID sql.NullString

	err := scan(&a.ID, &documentID, &corpusID, &structuralSetID, &a.LabelID,
		&parentID, &a.Page, &a.RawText, &a.BoundsJSON, &a.IsStructural, &creatorID,
		&a.LabelText, &a.LabelType)
	if err != nil {
		return nil, err
	}

	a.DocumentID = strOf(documentID)
	a.CorpusID = strOf(corpusID)
	a.StructuralSetID = strOf(structuralSetID)
	a.ParentID = strOf(parentID)
	a.CreatorID = strOf(creatorID)
	return &a, nil
}

// Get fetches an annotation by ID with label text and type populated.
func (r *AnnotationRepo) Get(ctx context.Context, id string) (*AnnotationRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+annotationColumns+" FROM annotations a JOIN labels l ON l.id = a.label_id WHERE a.id = ?", id,
	)

	a, err := scanAnnotation(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query annotation: %w", err)
	}
	return a, nil
}

// Insert inserts a new annotation.
func (r *AnnotationRepo) Insert(ctx context.Context, a *AnnotationRecord) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO annotations (id, document_id, corpus_id, structural_set_id, label_id,
		                          parent_id, page, raw_text, bounds_json, is_structural, creator_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, nullable(a.DocumentID), nullable(a.CorpusID), nullable(a.StructuralSetID), a.LabelID,
		nullable(a.ParentID), a.Page, a.RawText, a.BoundsJSON, a.IsStructural, nullable(a.CreatorID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert annotation: %w", err)
	}

	return nil
}

// SetParent wires the parent reference of an annotation.
func (r *AnnotationRepo) SetParent(ctx context.Context, id, parentID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE annotations SET parent_id = ? WHERE id = ?", nullable(parentID), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set annotation parent: %w", err)
	}
	return nil
}

// ListByDocumentAndCorpus returns a document's non-structural annotations
// within one corpus.
func (r *AnnotationRepo) ListByDocumentAndCorpus(ctx context.Context, documentID, corpusID string) ([]*AnnotationRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+annotationColumns+` FROM annotations a JOIN labels l ON l.id = a.label_id
		 WHERE a.document_id = ? AND a.corpus_id = ? AND a.is_structural = 0
		 ORDER BY a.page, a.id`,
		documentID, corpusID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list annotations: %w", err)
	}
	return collectAnnotations(rows)
}

// ListByStructuralSet returns a structural set's annotation forest.
func (r *AnnotationRepo) ListByStructuralSet(ctx context.Context, structuralSetID string) ([]*AnnotationRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+annotationColumns+` FROM annotations a JOIN labels l ON l.id = a.label_id
		 WHERE a.structural_set_id = ? ORDER BY a.page, a.id`,
		structuralSetID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list structural annotations: %w", err)
	}
	return collectAnnotations(rows)
}

func collectAnnotations(rows *sql.Rows) ([]*AnnotationRecord, error) {
	defer func() {
		_ = rows.Close()
	}()

	var annotations []*AnnotationRecord
	for rows.Next() {
		a, err := scanAnnotation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan annotation: %w", err)
		}
		annotations = append(annotations, a)
	}

	return annotations, rows.Err()
}
