package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_job_store.go -package=mocks corpushub/internal/storage JobStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobStore defines the interface for export/import tracking records.
type JobStore interface {
	// Get fetches a job by ID. Returns nil and ErrNotFound if not found.
	Get(ctx context.Context, id string) (*JobRecord, error)
	// Create inserts a new job, assigning a UUID if the ID is empty.
	Create(ctx context.Context, job *JobRecord) error
	// SetBackendLock flips the work-in-progress flag.
	SetBackendLock(ctx context.Context, id string, locked bool) error
	// SetFileKey records the blob store key of the produced archive.
	SetFileKey(ctx context.Context, id, fileKey string) error
	// SetCorpus records the corpus a job produced (import jobs learn it late).
	SetCorpus(ctx context.Context, id, corpusID string) error
	// MarkFinished stamps the completion time and releases the lock.
	MarkFinished(ctx context.Context, id string) error
	// MarkError flags the job failed and releases the lock.
	MarkError(ctx context.Context, id string) error
}

// JobRepo provides methods for job tracking operations.
// It implements the JobStore interface.
type JobRepo struct {
	db *sql.DB
}

// NewJobRepo creates a new JobRepo.
func NewJobRepo(db *sql.DB) *JobRepo {
	return &JobRepo{db: db}
}

// Get fetches a job by ID.
func (r *JobRepo) Get(ctx context.Context, id string) (*JobRecord, error) {
	var job JobRecord
	var corpusID, finished sql.NullString
	var createdAt string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, corpus_id, kind, file_key, include_conversations, finished, error, backend_lock, created_at
		 FROM jobs WHERE id = ?`, id,
	).Scan(&job.ID, &corpusID, &job.Kind, &job.FileKey, &job.IncludeConversations,
		&finished, &job.Error, &job.BackendLock, &createdAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query job: %w", err)
	}

	job.CorpusID = strOf(corpusID)
	if finished.Valid {
		t, err := parseDBTime(finished.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse finished timestamp: %w", err)
		}
		job.Finished = &t
	}
	job.CreatedAt, err = parseDBTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}

	return &job, nil
}

// Create inserts a new job.
func (r *JobRepo) Create(ctx context.Context, job *JobRecord) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO jobs (id, corpus_id, kind, file_key, include_conversations, error, backend_lock)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		job.ID, nullable(job.CorpusID), job.Kind, job.FileKey, job.IncludeConversations,
		job.Error, job.BackendLock,
	)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	return nil
}

// SetBackendLock flips the work-in-progress flag.
func (r *JobRepo) SetBackendLock(ctx context.Context, id string, locked bool) error {
	_, err := r.db.ExecContext(ctx, "UPDATE jobs SET backend_lock = ? WHERE id = ?", locked, id)
	if err != nil {
		return fmt.Errorf("failed to set job lock: %w", err)
	}
	return nil
}

// SetFileKey records the blob store key of the produced archive.
func (r *JobRepo) SetFileKey(ctx context.Context, id, fileKey string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE jobs SET file_key = ? WHERE id = ?", fileKey, id)
	if err != nil {
		return fmt.Errorf("failed to set job file key: %w", err)
	}
	return nil
}

// SetCorpus records the corpus a job produced.
func (r *JobRepo) SetCorpus(ctx context.Context, id, corpusID string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE jobs SET corpus_id = ? WHERE id = ?", nullable(corpusID), id)
	if err != nil {
		return fmt.Errorf("failed to set job corpus: %w", err)
	}
	return nil
}

// MarkFinished stamps the completion time and releases the lock.
func (r *JobRepo) MarkFinished(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE jobs SET finished = ?, backend_lock = 0 WHERE id = ?",
		formatDBTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark job finished: %w", err)
	}
	return nil
}

// MarkError flags the job failed and releases the lock.
func (r *JobRepo) MarkError(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE jobs SET error = 1, backend_lock = 0 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark job errored: %w", err)
	}
	return nil
}
