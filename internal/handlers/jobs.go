package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"corpushub/internal/blobstore"
	"corpushub/internal/contextutil"
	"corpushub/internal/storage"
)

// JobHandler handles HTTP requests for job status.
type JobHandler struct {
	jobs storage.JobStore
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobs storage.JobStore) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// JobResponse represents the HTTP response payload for a job.
type JobResponse struct {
	ID       string `json:"id"`
	CorpusID string `json:"corpus_id,omitempty"`
	Kind     string `json:"kind"`
	Status   string `json:"status"`
	FileKey  string `json:"file_key,omitempty"`
	Finished string `json:"finished,omitempty"` // RFC3339
	Created  string `json:"created"`            // RFC3339
}

// jobStatus derives a display status from the record's flags.
func jobStatus(job *storage.JobRecord) string {
	switch {
	case job.Error:
		return "failed"
	case job.Finished != nil:
		return "finished"
	case job.BackendLock:
		return "running"
	default:
		return "pending"
	}
}

// ServeHTTP returns the status of one job.
func (h *JobHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	jobID := chi.URLParam(r, "jobID")
	job, err := h.jobs.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		logger.ErrorContext(ctx, "failed to load job", "job_id", jobID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load job")
		return
	}

	resp := JobResponse{
		ID:       job.ID,
		CorpusID: job.CorpusID,
		Kind:     job.Kind,
		Status:   jobStatus(job),
		FileKey:  job.FileKey,
		Created:  job.CreatedAt.UTC().Format(time.RFC3339),
	}
	if job.Finished != nil {
		resp.Finished = job.Finished.UTC().Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, resp)
}

// ArchiveHandler handles HTTP requests to download a finished job's archive.
type ArchiveHandler struct {
	jobs  storage.JobStore
	blobs *blobstore.Store
}

// NewArchiveHandler creates a new ArchiveHandler.
func NewArchiveHandler(jobs storage.JobStore, blobs *blobstore.Store) *ArchiveHandler {
	return &ArchiveHandler{jobs: jobs, blobs: blobs}
}

// ServeHTTP streams the archive produced by a finished export job.
func (h *ArchiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	jobID := chi.URLParam(r, "jobID")
	job, err := h.jobs.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		logger.ErrorContext(ctx, "failed to load job", "job_id", jobID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load job")
		return
	}

	if job.Error {
		writeError(w, http.StatusConflict, "Job failed")
		return
	}
	if job.Finished == nil || job.FileKey == "" {
		writeError(w, http.StatusConflict, "Job not finished")
		return
	}

	blob, err := h.blobs.Open(job.FileKey)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Archive not found")
			return
		}
		logger.ErrorContext(ctx, "failed to open archive", "job_id", jobID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to open archive")
		return
	}
	defer func() {
		_ = blob.Close()
	}()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+jobID+`.zip"`)
	if _, err := io.Copy(w, blob); err != nil {
		logger.ErrorContext(ctx, "failed to stream archive", "job_id", jobID, "error", err)
	}
}
