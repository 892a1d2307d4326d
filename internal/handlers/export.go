package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"corpushub/internal/contextutil"
	"corpushub/internal/storage"
)

// ExportHandler handles HTTP requests to start corpus exports.
type ExportHandler struct {
	corpora storage.CorpusStore
	jobs    storage.JobStore
	runner  JobRunner
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(corpora storage.CorpusStore, jobs storage.JobStore, runner JobRunner) *ExportHandler {
	return &ExportHandler{corpora: corpora, jobs: jobs, runner: runner}
}

// ExportRequest represents the HTTP request payload for starting an export.
// The body is optional; an empty body uses the defaults.
type ExportRequest struct {
	IncludeConversations bool `json:"include_conversations"`
}

// ExportResponse represents the HTTP response payload for a started export.
type ExportResponse struct {
	JobID string `json:"job_id"`
}

// ServeHTTP starts an export job for the corpus in the URL and returns 202
// with the job id. The archive is produced in the background.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	corpusID := chi.URLParam(r, "corpusID")
	if corpusID == "" {
		writeError(w, http.StatusBadRequest, "Missing corpus id")
		return
	}

	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.corpora.Get(ctx, corpusID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Corpus not found")
			return
		}
		logger.ErrorContext(ctx, "failed to load corpus", "corpus_id", corpusID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load corpus")
		return
	}

	job := &storage.JobRecord{
		CorpusID:             corpusID,
		Kind:                 storage.JobKindExport,
		IncludeConversations: req.IncludeConversations,
	}
	if err := h.jobs.Create(ctx, job); err != nil {
		logger.ErrorContext(ctx, "failed to create export job", "corpus_id", corpusID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create export job")
		return
	}

	go func(ctx context.Context, jobID string) {
		if err := h.runner.RunExport(ctx, jobID); err != nil {
			contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "export job failed", "job_id", jobID, "error", err)
		}
	}(backgroundContext(ctx), job.ID)

	logger.InfoContext(ctx, "export job started", "job_id", job.ID, "corpus_id", corpusID)
	writeJSON(w, http.StatusAccepted, ExportResponse{JobID: job.ID})
}
