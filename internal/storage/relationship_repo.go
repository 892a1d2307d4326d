package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// RelationshipStore defines the interface for relationship operations.
type RelationshipStore interface {
	// Insert inserts a relationship and its source/target annotation edges.
	Insert(ctx context.Context, rel *RelationshipRecord) error
	// ListByCorpus returns corpus- and document-scoped relationships of a
	// corpus (excluding structural-set internal ones), with edges and label
	// text populated.
	ListByCorpus(ctx context.Context, corpusID string) ([]*RelationshipRecord, error)
	// ListByStructuralSet returns a structural set's internal relationships,
	// with edges and label text populated.
	ListByStructuralSet(ctx context.Context, structuralSetID string) ([]*RelationshipRecord, error)
}

// RelationshipRepo provides methods for relationship operations.
// It implements the RelationshipStore interface.
type RelationshipRepo struct {
	db *sql.DB
}

// NewRelationshipRepo creates a new RelationshipRepo.
func NewRelationshipRepo(db *sql.DB) *RelationshipRepo {
	return &RelationshipRepo{db: db}
}

// Insert inserts a relationship and its source/target annotation edges.
func (r *RelationshipRepo) Insert(ctx context.Context, rel *RelationshipRecord) error {
	if rel.ID == "" {
		rel.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO relationships (id, corpus_id, document_id, structural_set_id, label_id, is_structural)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rel.ID, nullable(rel.CorpusID), nullable(rel.DocumentID), nullable(rel.StructuralSetID),
		rel.LabelID, rel.IsStructural,
	)
	if err != nil {
		return fmt.Errorf("failed to insert relationship: %w", err)
	}

	for _, annotationID := range rel.SourceIDs {
		if _, err := r.db.ExecContext(ctx,
			"INSERT INTO relationship_sources (relationship_id, annotation_id) VALUES (?, ?)",
			rel.ID, annotationID,
		); err != nil {
			return fmt.Errorf("failed to insert relationship source: %w", err)
		}
	}
	for _, annotationID := range rel.TargetIDs {
		if _, err := r.db.ExecContext(ctx,
			"INSERT INTO relationship_targets (relationship_id, annotation_id) VALUES (?, ?)",
			rel.ID, annotationID,
		); err != nil {
			return fmt.Errorf("failed to insert relationship target: %w", err)
		}
	}

	return nil
}

// ListByCorpus returns corpus- and document-scoped relationships of a corpus.
// Relationships that live inside a structural set are excluded; those travel
// with their owning set.
func (r *RelationshipRepo) ListByCorpus(ctx context.Context, corpusID string) ([]*RelationshipRecord, error) {
	return r.list(ctx,
		`SELECT r.id, r.corpus_id, r.document_id, r.structural_set_id, r.label_id, r.is_structural, l.text
		 FROM relationships r JOIN labels l ON l.id = r.label_id
		 WHERE r.structural_set_id IS NULL
		   AND (r.corpus_id = ? OR r.document_id IN
		        (SELECT document_id FROM version_paths WHERE corpus_id = ?))
		 ORDER BY r.id`,
		corpusID, corpusID,
	)
}

// ListByStructuralSet returns a structural set's internal relationships.
func (r *RelationshipRepo) ListByStructuralSet(ctx context.Context, structuralSetID string) ([]*RelationshipRecord, error) {
	return r.list(ctx,
		`SELECT r.id, r.corpus_id, r.document_id, r.structural_set_id, r.label_id, r.is_structural, l.text
		 FROM relationships r JOIN labels l ON l.id = r.label_id
		 WHERE r.structural_set_id = ? ORDER BY r.id`,
		structuralSetID,
	)
}

func (r *RelationshipRepo) list(ctx context.Context, query string, args ...any) ([]*RelationshipRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var rels []*RelationshipRecord
	for rows.Next() {
		var rel RelationshipRecord
		var corpusID, documentID, structuralSetID sql.NullString

		if err := rows.Scan(&rel.ID, &corpusID, &documentID, &structuralSetID,
			&rel.LabelID, &rel.IsStructural, &rel.LabelText); err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}

		rel.CorpusID = strOf(corpusID)
		rel.DocumentID = strOf(documentID)
		rel.StructuralSetID = strOf(structuralSetID)
		rels = append(rels, &rel)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, rel := range rels {
		if rel.SourceIDs, err = r.edgeIDs(ctx, "relationship_sources", rel.ID); err != nil {
			return nil, err
		}
		if rel.TargetIDs, err = r.edgeIDs(ctx, "relationship_targets", rel.ID); err != nil {
			return nil, err
		}
	}

	return rels, nil
}

func (r *RelationshipRepo) edgeIDs(ctx context.Context, table, relationshipID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT annotation_id FROM "+table+" WHERE relationship_id = ? ORDER BY annotation_id",
		relationshipID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
