package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"corpushub/internal/blobstore"
	"corpushub/internal/contextutil"
	"corpushub/internal/storage"
)

// maxArchiveSize bounds the in-memory part of an uploaded archive; larger
// uploads spill to temp files.
const maxArchiveSize = 32 << 20

// ImportHandler handles HTTP requests to start corpus imports.
type ImportHandler struct {
	corpora storage.CorpusStore
	jobs    storage.JobStore
	blobs   *blobstore.Store
	runner  JobRunner
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(corpora storage.CorpusStore, jobs storage.JobStore, blobs *blobstore.Store, runner JobRunner) *ImportHandler {
	return &ImportHandler{corpora: corpora, jobs: jobs, blobs: blobs, runner: runner}
}

// ImportResponse represents the HTTP response payload for a started import.
type ImportResponse struct {
	JobID string `json:"job_id"`
}

// ServeHTTP accepts a multipart upload with an "archive" file part, stores
// it and starts an import job. Optional form fields: "corpus_id" merges into
// an existing corpus, "email" attributes the import to a user.
func (h *ImportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if err := r.ParseMultipartForm(maxArchiveSize); err != nil {
		logger.WarnContext(ctx, "invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, _, err := r.FormFile("archive")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing archive file")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read uploaded archive", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to read uploaded archive")
		return
	}

	corpusID := r.FormValue("corpus_id")
	if corpusID != "" {
		if _, err := h.corpora.Get(ctx, corpusID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Corpus not found")
				return
			}
			logger.ErrorContext(ctx, "failed to load corpus", "corpus_id", corpusID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to load corpus")
			return
		}
	}

	job := &storage.JobRecord{
		CorpusID: corpusID,
		Kind:     storage.JobKindImport,
	}
	if err := h.jobs.Create(ctx, job); err != nil {
		logger.ErrorContext(ctx, "failed to create import job", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create import job")
		return
	}

	fileKey := "imports/" + job.ID + ".zip"
	if err := h.blobs.Save(fileKey, data); err != nil {
		logger.ErrorContext(ctx, "failed to store uploaded archive", "job_id", job.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store uploaded archive")
		return
	}
	if err := h.jobs.SetFileKey(ctx, job.ID, fileKey); err != nil {
		logger.ErrorContext(ctx, "failed to record archive key", "job_id", job.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to record archive key")
		return
	}

	actorEmail := r.FormValue("email")
	go func(ctx context.Context, jobID, actorEmail string) {
		if err := h.runner.RunImport(ctx, jobID, actorEmail); err != nil {
			contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "import job failed", "job_id", jobID, "error", err)
		}
	}(backgroundContext(ctx), job.ID, actorEmail)

	logger.InfoContext(ctx, "import job started", "job_id", job.ID, "bytes", len(data))
	writeJSON(w, http.StatusAccepted, ImportResponse{JobID: job.ID})
}
