// Package export flattens a corpus aggregate into a portable archive
// manifest plus its document binaries.
package export

import (
	"context"
	"fmt"

	"corpushub/internal/archive"
	"corpushub/internal/blobstore"
	"corpushub/internal/contextutil"
	"corpushub/internal/report"
	"corpushub/internal/storage"
)

// Options controls optional manifest sections.
type Options struct {
	IncludeConversations bool
}

// Exporter packages a corpus and everything reachable from it.
type Exporter struct {
	stores *storage.Stores
	blobs  *blobstore.Store
}

// NewExporter creates a new Exporter.
func NewExporter(stores *storage.Stores, blobs *blobstore.Store) *Exporter {
	return &Exporter{stores: stores, blobs: blobs}
}

// Export builds the archive manifest and binary map for a corpus.
//
// A missing corpus or label set is fatal. A document whose binary cannot be
// read is skipped and recorded in the report; folder, version path and
// relationship packaging errors degrade those sections to empty lists.
func (e *Exporter) Export(ctx context.Context, corpusID string, opts Options) (*archive.Manifest, map[string][]byte, *report.Report, error) {
	logger := contextutil.LoggerFromContext(ctx)
	rep := report.New()

	corpus, err := e.stores.Corpora.Get(ctx, corpusID)
	if err != nil {
		return nil, nil, rep, fmt.Errorf("failed to load corpus %s: %w", corpusID, err)
	}

	man := &archive.Manifest{
		FormatVersion: archive.FormatVersionV2,
		Corpus: archive.CorpusRecord{
			ID:           corpus.ID,
			Title:        corpus.Title,
			CreatorEmail: e.emailOf(ctx, corpus.CreatorID),
		},
		DocLabels:     make(map[string]archive.LabelRecord),
		TextLabels:    make(map[string]archive.LabelRecord),
		AnnotatedDocs: make(map[string]archive.DocumentRecord),
	}

	if err := e.packageLabelSet(ctx, corpus.LabelSetID, man); err != nil {
		return nil, nil, rep, err
	}

	// Resolve the live document set via the version tree, then package each
	// document; per-document failures skip that document only.
	live, err := e.stores.VersionPaths.ListCurrentByCorpus(ctx, corpusID)
	if err != nil {
		return nil, nil, rep, fmt.Errorf("failed to list live documents: %w", err)
	}

	binaries := make(map[string][]byte)
	// docHashes maps document ids to content hashes; version path records
	// reference documents by hash.
	docHashes := make(map[string]string)
	// setIDs collects the structural sets referenced by exported documents.
	setIDs := make(map[string]struct{})
	exported := make(map[string]struct{})

	for _, vp := range live {
		if _, done := exported[vp.DocumentID]; done {
			continue
		}
		exported[vp.DocumentID] = struct{}{}

		name, rec, binary, setID, err := e.packageDocument(ctx, vp.DocumentID, corpusID)
		if err != nil {
			logger.WarnContext(ctx, "skipping document", "document_id", vp.DocumentID, "error", err)
			rep.Skip(report.KindDocument, vp.DocumentID, report.ReasonReadFailure, err.Error())
			continue
		}

		man.AnnotatedDocs[name] = *rec
		binaries[name] = binary
		docHashes[vp.DocumentID] = rec.FileHash
		if setID != "" {
			setIDs[setID] = struct{}{}
		}
	}

	e.packageStructuralSets(ctx, setIDs, man, rep)

	folderPaths := e.packageFolders(ctx, corpusID, man, rep)
	e.packageVersionPaths(ctx, corpusID, docHashes, folderPaths, man, rep)
	e.packageRelationships(ctx, corpusID, man, rep)

	man.AgentConfig = &archive.AgentConfigRecord{
		CorpusAgentInstructions:   corpus.CorpusAgentInstructions,
		DocumentAgentInstructions: corpus.DocumentAgentInstructions,
	}
	man.Description = corpus.DescriptionMD
	e.packageRevisions(ctx, corpusID, man, rep)

	if opts.IncludeConversations {
		e.packageConversations(ctx, corpusID, man, rep)
	}

	logger.InfoContext(ctx, "export assembled",
		"corpus_id", corpusID,
		"documents", len(man.AnnotatedDocs),
		"structural_sets", len(man.StructuralSets),
		"skipped", rep.SkipCount(""))

	return man, binaries, rep, nil
}

// emailOf resolves a user id to an email, returning "" when unknown.
func (e *Exporter) emailOf(ctx context.Context, userID string) string {
	if userID == "" {
		return ""
	}
	user, err := e.stores.Users.Get(ctx, userID)
	if err != nil {
		return ""
	}
	return user.Email
}
