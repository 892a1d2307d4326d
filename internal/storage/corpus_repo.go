package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_corpus_store.go -package=mocks corpushub/internal/storage CorpusStore,LabelSetStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// CorpusStore defines the interface for corpus (aggregate root) operations.
type CorpusStore interface {
	// Get fetches a corpus by ID. Returns nil and ErrNotFound if not found.
	Get(ctx context.Context, id string) (*CorpusRecord, error)
	// Create inserts a new corpus, assigning a UUID if the ID is empty.
	Create(ctx context.Context, c *CorpusRecord) error
	// SetLabelSet attaches a label set to a corpus that has none yet.
	SetLabelSet(ctx context.Context, id, labelSetID string) error
	// UpdateAgentConfig overwrites the agent instruction fields.
	UpdateAgentConfig(ctx context.Context, id, corpusInstructions, documentInstructions string) error
	// SetDescription overwrites the current markdown description content.
	SetDescription(ctx context.Context, id, content string) error
}

// LabelSetStore defines the interface for label set operations.
type LabelSetStore interface {
	// Get fetches a label set by ID. Returns nil and ErrNotFound if not found.
	Get(ctx context.Context, id string) (*LabelSetRecord, error)
	// Create inserts a new label set, assigning a UUID if the ID is empty.
	Create(ctx context.Context, ls *LabelSetRecord) error
}

// CorpusRepo provides methods for corpus operations.
// It implements the CorpusStore interface.
type CorpusRepo struct {
	db *sql.DB
}

// NewCorpusRepo creates a new CorpusRepo.
func NewCorpusRepo(db *sql.DB) *CorpusRepo {
	return &CorpusRepo{db: db}
}

// Get fetches a corpus by ID.
func (r *CorpusRepo) Get(ctx context.Context, id string) (*CorpusRecord, error) {
	var c CorpusRecord
	var labelSetID, creatorID sql.NullString
	var createdAt string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, label_set_id, creator_id, description_md,
		        corpus_agent_instructions, document_agent_instructions, created_at
		 FROM corpora WHERE id = ?`, id,
	).Scan(&c.ID, &c.Title, &labelSetID, &creatorID, &c.DescriptionMD,
		&c.CorpusAgentInstructions, &c.DocumentAgentInstructions, &createdAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query corpus: %w", err)
	}

	c.LabelSetID = strOf(labelSetID)
	c.CreatorID = strOf(creatorID)
	c.CreatedAt, err = parseDBTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}

	return &c, nil
}

// Create inserts a new corpus.
func (r *CorpusRepo) Create(ctx context.Context, c *CorpusRecord) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO corpora (id, title, label_set_id, creator_id, description_md,
		                      corpus_agent_instructions, document_agent_instructions)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, nullable(c.LabelSetID), nullable(c.CreatorID), c.DescriptionMD,
		c.CorpusAgentInstructions, c.DocumentAgentInstructions,
	)
	if err != nil {
		return fmt.Errorf("failed to insert corpus: %w", err)
	}

	return nil
}

// SetLabelSet attaches a label set to a corpus.
func (r *CorpusRepo) SetLabelSet(ctx context.Context, id, labelSetID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE corpora SET label_set_id = ? WHERE id = ?", nullable(labelSetID), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set label set: %w", err)
	}
	return nil
}

// UpdateAgentConfig overwrites the agent instruction fields.
func (r *CorpusRepo) UpdateAgentConfig(ctx context.Context, id, corpusInstructions, documentInstructions string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE corpora SET corpus_agent_instructions = ?, document_agent_instructions = ? WHERE id = ?",
		corpusInstructions, documentInstructions, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update agent config: %w", err)
	}
	return nil
}

// SetDescription overwrites the current markdown description content.
func (r *CorpusRepo) SetDescription(ctx context.Context, id, content string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE corpora SET description_md = ? WHERE id = ?", content, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update description: %w", err)
	}
	return nil
}

// LabelSetRepo provides methods for label set operations.
// It implements the LabelSetStore interface.
type LabelSetRepo struct {
	db *sql.DB
}

// NewLabelSetRepo creates a new LabelSetRepo.
func NewLabelSetRepo(db *sql.DB) *LabelSetRepo {
	return &LabelSetRepo{db: db}
}

// Get fetches a label set by ID.
func (r *LabelSetRepo) Get(ctx context.Context, id string) (*LabelSetRecord, error) {
	var ls LabelSetRecord

	err := r.db.QueryRowContext(ctx,
		"SELECT id, title, description FROM label_sets WHERE id = ?", id,
	).Scan(&ls.ID, &ls.Title, &ls.Description)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query label set: %w", err)
	}

	return &ls, nil
}

// Create inserts a new label set.
func (r *LabelSetRepo) Create(ctx context.Context, ls *LabelSetRecord) error {
	if ls.ID == "" {
		ls.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO label_sets (id, title, description) VALUES (?, ?, ?)",
		ls.ID, ls.Title, ls.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to insert label set: %w", err)
	}

	return nil
}
