package importer

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"corpushub/internal/archive"
	"corpushub/internal/contextutil"
	"corpushub/internal/parser"
	"corpushub/internal/report"
	"corpushub/internal/storage"
)

// importLegacy rebuilds a first-generation archive: corpus, labels, documents
// and annotations only. Legacy archives carry no folder tree, no version
// history and no structural sets, so each document gets a single root version
// path at its filename, a structural set parsed from its binary and every
// annotation attaches directly to its document.
func (i *Importer) importLegacy(ctx context.Context, r *run) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := i.ensureCorpus(ctx, r); err != nil {
		return err
	}
	if err := i.createLabels(ctx, r); err != nil {
		return err
	}

	names := make([]string, 0, len(r.man.AnnotatedDocs))
	for name := range r.man.AnnotatedDocs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rec := r.man.AnnotatedDocs[name]

		binary, ok := r.binaries[name]
		if !ok {
			logger.WarnContext(ctx, "skipping document", "entry", name, "error", "binary entry missing from archive")
			r.rep.Skip(report.KindDocument, name, report.ReasonReadFailure, "binary entry missing from archive")
			continue
		}

		// First-generation manifests predate content hashing.
		fileHash := rec.FileHash
		if fileHash == "" {
			fileHash = parser.ContentHash(binary)
		}

		doc := &storage.DocumentRecord{
			ID:              uuid.New().String(),
			Title:           rec.Title,
			FileName:        rec.FileName,
			FileHash:        fileHash,
			TextContent:     rec.Content,
			StructuralSetID: i.deriveStructuralSet(ctx, r, fileHash, binary),
			BackendLock:     true,
			CreatorID:       r.actorID,
		}
		doc.FileKey = "documents/" + doc.ID + "/" + doc.FileName

		if err := i.stores.Documents.Create(ctx, doc); err != nil {
			logger.WarnContext(ctx, "skipping document", "entry", name, "error", err)
			r.rep.Skip(report.KindDocument, name, report.ReasonStoreFailure, err.Error())
			continue
		}
		if err := i.blobs.Save(doc.FileKey, binary); err != nil {
			logger.WarnContext(ctx, "skipping document", "entry", name, "error", err)
			r.rep.Skip(report.KindDocument, name, report.ReasonStoreFailure, err.Error())
			continue
		}

		i.importDocAnnotations(ctx, r, doc.ID, rec)

		vp := &storage.VersionPathRecord{
			CorpusID:      r.corpusID,
			DocumentID:    doc.ID,
			Path:          rec.FileName,
			VersionNumber: 1,
			IsCurrent:     true,
		}
		if err := i.stores.VersionPaths.Insert(ctx, vp); err != nil {
			logger.WarnContext(ctx, "failed to create version path", "document_id", doc.ID, "error", err)
			r.rep.Skip(report.KindVersionPath, rec.FileName, report.ReasonStoreFailure, err.Error())
		}

		if err := i.stores.Documents.SetBackendLock(ctx, doc.ID, false); err != nil {
			logger.WarnContext(ctx, "failed to release document lock", "document_id", doc.ID, "error", err)
		}
		r.docByHash[fileHash] = doc.ID
	}

	return nil
}

// deriveStructuralSet parses a legacy document's binary into its heading
// forest and stores it as the structural set for that content hash, reusing
// an existing set when one already covers the hash. Content without headings
// gets no set; failures skip the set and leave the document without one.
func (i *Importer) deriveStructuralSet(ctx context.Context, r *run, fileHash string, binary []byte) string {
	logger := contextutil.LoggerFromContext(ctx)

	if id, ok := r.setIDByHash[fileHash]; ok {
		return id
	}

	existing, err := i.stores.StructuralSets.GetByHash(ctx, fileHash)
	if err == nil {
		r.setIDByHash[fileHash] = existing.ID
		r.rep.Deduplicated++
		logger.DebugContext(ctx, "reusing structural set", "file_hash", fileHash, "structural_set_id", existing.ID)
		return existing.ID
	}
	if !errors.Is(err, storage.ErrNotFound) {
		logger.WarnContext(ctx, "skipping structural set", "file_hash", fileHash, "error", err)
		r.rep.Skip(report.KindStructuralSet, fileHash, report.ReasonStoreFailure, err.Error())
		return ""
	}

	structure, err := i.parser.Parse(binary)
	if err != nil {
		logger.WarnContext(ctx, "skipping structural set", "file_hash", fileHash, "error", err)
		r.rep.Skip(report.KindStructuralSet, fileHash, report.ReasonReadFailure, err.Error())
		return ""
	}
	if len(structure.Annotations) == 0 {
		return ""
	}

	set := &storage.StructuralSetRecord{FileHash: fileHash}
	if err := i.stores.StructuralSets.Create(ctx, set); err != nil {
		logger.WarnContext(ctx, "skipping structural set", "file_hash", fileHash, "error", err)
		r.rep.Skip(report.KindStructuralSet, fileHash, report.ReasonStoreFailure, err.Error())
		return ""
	}

	remap := NewRemapTable()
	i.importAnnotationForest(ctx, r, structuralRecords(structure), remap, func(a *storage.AnnotationRecord) {
		a.StructuralSetID = set.ID
		a.IsStructural = true
	})
	for _, relation := range structure.Relations {
		i.insertRelationship(ctx, r, archive.RelationshipRecord{
			Label:     relation.Label,
			SourceIDs: relation.SourceIDs,
			TargetIDs: relation.TargetIDs,
		}, remap, func(rel *storage.RelationshipRecord) {
			rel.StructuralSetID = set.ID
			rel.IsStructural = true
		})
	}

	r.setIDByHash[fileHash] = set.ID
	return set.ID
}

// structuralRecords flattens a parse result into the record form the
// annotation forest loader works on.
func structuralRecords(structure *parser.Structure) []archive.AnnotationRecord {
	records := make([]archive.AnnotationRecord, 0, len(structure.Annotations))
	for _, a := range structure.Annotations {
		records = append(records, archive.AnnotationRecord{
			ExportID:   a.LocalID,
			Label:      a.Label,
			RawText:    a.Text,
			ParentID:   a.ParentID,
			Structural: true,
		})
	}
	return records
}
