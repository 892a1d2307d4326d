// Package tasks runs export and import jobs in the background, owning the
// job record lifecycle: lock, work, file key, finish or error.
package tasks

import (
	"context"
	"fmt"

	"corpushub/internal/archive"
	"corpushub/internal/blobstore"
	"corpushub/internal/contextutil"
	"corpushub/internal/export"
	"corpushub/internal/importer"
	"corpushub/internal/storage"
)

// Runner executes jobs against the stores and blob store.
type Runner struct {
	stores   *storage.Stores
	blobs    *blobstore.Store
	exporter *export.Exporter
	importer *importer.Importer
}

// NewRunner creates a new Runner.
func NewRunner(stores *storage.Stores, blobs *blobstore.Store) *Runner {
	return &Runner{
		stores:   stores,
		blobs:    blobs,
		exporter: export.NewExporter(stores, blobs),
		importer: importer.NewImporter(stores, blobs),
	}
}

// RunExport produces the archive for an export job and stores it under
// exports/<job id>.zip. The job ends marked finished or errored, never locked.
func (r *Runner) RunExport(ctx context.Context, jobID string) error {
	logger := contextutil.LoggerFromContext(ctx).With("job_id", jobID)
	ctx = contextutil.WithLogger(ctx, logger)

	job, err := r.stores.Jobs.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load export job: %w", err)
	}
	if err := r.stores.Jobs.SetBackendLock(ctx, jobID, true); err != nil {
		return fmt.Errorf("failed to lock export job: %w", err)
	}

	man, binaries, rep, err := r.exporter.Export(ctx, job.CorpusID, export.Options{
		IncludeConversations: job.IncludeConversations,
	})
	if err != nil {
		return r.fail(ctx, jobID, fmt.Errorf("export failed: %w", err))
	}

	data, err := archive.WriteBytes(man, binaries)
	if err != nil {
		return r.fail(ctx, jobID, fmt.Errorf("failed to assemble archive: %w", err))
	}

	fileKey := "exports/" + jobID + ".zip"
	if err := r.blobs.Save(fileKey, data); err != nil {
		return r.fail(ctx, jobID, fmt.Errorf("failed to store archive: %w", err))
	}
	if err := r.stores.Jobs.SetFileKey(ctx, jobID, fileKey); err != nil {
		return r.fail(ctx, jobID, err)
	}
	if err := r.stores.Jobs.MarkFinished(ctx, jobID); err != nil {
		return r.fail(ctx, jobID, err)
	}

	logger.InfoContext(ctx, "export job finished",
		"corpus_id", job.CorpusID, "file_key", fileKey,
		"bytes", len(data), "skipped", rep.SkipCount(""))
	return nil
}

// RunImport rebuilds a corpus from an import job's uploaded archive. The job
// record learns the produced corpus id before being marked finished.
func (r *Runner) RunImport(ctx context.Context, jobID, actorEmail string) error {
	logger := contextutil.LoggerFromContext(ctx).With("job_id", jobID)
	ctx = contextutil.WithLogger(ctx, logger)

	job, err := r.stores.Jobs.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load import job: %w", err)
	}
	if err := r.stores.Jobs.SetBackendLock(ctx, jobID, true); err != nil {
		return fmt.Errorf("failed to lock import job: %w", err)
	}

	data, err := r.blobs.Read(job.FileKey)
	if err != nil {
		return r.fail(ctx, jobID, fmt.Errorf("failed to read uploaded archive: %w", err))
	}

	man, binaries, err := archive.Read(data)
	if err != nil {
		return r.fail(ctx, jobID, fmt.Errorf("failed to open archive: %w", err))
	}

	corpusID, rep, err := r.importer.Import(ctx, man, binaries, importer.Options{
		ActorEmail:     actorEmail,
		TargetCorpusID: job.CorpusID,
	})
	if err != nil {
		return r.fail(ctx, jobID, fmt.Errorf("import failed: %w", err))
	}

	if err := r.stores.Jobs.SetCorpus(ctx, jobID, corpusID); err != nil {
		return r.fail(ctx, jobID, err)
	}
	if err := r.stores.Jobs.MarkFinished(ctx, jobID); err != nil {
		return r.fail(ctx, jobID, err)
	}

	logger.InfoContext(ctx, "import job finished",
		"corpus_id", corpusID, "format", archive.DetectFormat(man).String(),
		"deduplicated", rep.Deduplicated, "skipped", rep.SkipCount(""))
	return nil
}

// fail marks the job errored and returns the original error. A failure while
// marking is logged; the original cause still wins.
func (r *Runner) fail(ctx context.Context, jobID string, cause error) error {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "job failed", "job_id", jobID, "error", cause)

	if err := r.stores.Jobs.MarkError(ctx, jobID); err != nil {
		logger.ErrorContext(ctx, "failed to mark job errored", "job_id", jobID, "error", err)
	}
	return cause
}
