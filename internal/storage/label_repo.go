package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// LabelStore defines the interface for label operations.
type LabelStore interface {
	// GetOrCreate returns the label with the given set, text and type,
	// creating it if it does not exist yet.
	GetOrCreate(ctx context.Context, label *LabelRecord) (*LabelRecord, error)
	// ListBySet returns all labels of a label set.
	ListBySet(ctx context.Context, labelSetID string) ([]*LabelRecord, error)
}

// LabelRepo provides methods for label operations.
// It implements the LabelStore interface.
type LabelRepo struct {
	db *sql.DB
}

// NewLabelRepo creates a new LabelRepo.
func NewLabelRepo(db *sql.DB) *LabelRepo {
	return &LabelRepo{db: db}
}

// GetOrCreate returns the label identified by (label_set_id, text, label_type),
// creating it with the given attributes if it does not exist yet.
func (r *LabelRepo) GetOrCreate(ctx context.Context, label *LabelRecord) (*LabelRecord, error) {
	var existing LabelRecord

	err := r.db.QueryRowContext(ctx,
		`SELECT id, label_set_id, text, color, description, label_type
		 FROM labels WHERE label_set_id = ? AND text = ? AND label_type = ?`,
		label.LabelSetID, label.Text, label.LabelType,
	).Scan(&existing.ID, &existing.LabelSetID, &existing.Text,
		&existing.Color, &existing.Description, &existing.LabelType)

	if err == nil {
		return &existing, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query label: %w", err)
	}

	if label.ID == "" {
		label.ID = uuid.New().String()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO labels (id, label_set_id, text, color, description, label_type)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		label.ID, label.LabelSetID, label.Text, label.Color, label.Description, label.LabelType,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert label: %w", err)
	}

	return label, nil
}

// ListBySet returns all labels of a label set ordered by text.
func (r *LabelRepo) ListBySet(ctx context.Context, labelSetID string) ([]*LabelRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, label_set_id, text, color, description, label_type
		 FROM labels WHERE label_set_id = ? ORDER BY text`, labelSetID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var labels []*LabelRecord
	for rows.Next() {
		var l LabelRecord
		if err := rows.Scan(&l.ID, &l.LabelSetID, &l.Text, &l.Color, &l.Description, &l.LabelType); err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		labels = append(labels, &l)
	}

	return labels, rows.Err()
}
