package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"corpushub/internal/archive"
	"corpushub/internal/blobstore"
	"corpushub/internal/contextutil"
	"corpushub/internal/parser"
	"corpushub/internal/report"
	"corpushub/internal/storage"
)

// Options controls one import run.
type Options struct {
	// ActorEmail identifies the importing user. Records whose original
	// author cannot be resolved are attributed to this user.
	ActorEmail string
	// TargetCorpusID merges the archive into an existing corpus instead of
	// creating a new one.
	TargetCorpusID string
}

// Importer reconstructs a corpus aggregate from an archive manifest and its
// document binaries.
type Importer struct {
	stores *storage.Stores
	blobs  *blobstore.Store
	parser *parser.StructuralParser
}

// NewImporter creates a new Importer.
func NewImporter(stores *storage.Stores, blobs *blobstore.Store) *Importer {
	return &Importer{
		stores: stores,
		blobs:  blobs,
		parser: parser.NewStructuralParser(),
	}
}

// run carries the per-import state threaded through the step methods.
type run struct {
	man      *archive.Manifest
	binaries map[string][]byte
	opts     Options
	rep      *report.Report

	corpusID   string
	labelSetID string
	actorID    string

	docLabels  map[string]string // label name -> label id
	spanLabels map[string]string

	setIDByHash map[string]string // content hash -> structural set id
	docByHash   map[string]string // content hash -> document id
	annotToDoc  map[string]string // annotation id -> owning document id
	docRemap    *RemapTable       // export-local annotation ids across all documents
}

// Import rebuilds the archived corpus, dispatching on the detected format.
// It returns the id of the created (or merge target) corpus together with
// the run's diagnostics.
//
// Failures on the aggregate root or its label set abort the run; failures on
// individual entities skip that entity and are recorded in the report.
func (i *Importer) Import(ctx context.Context, man *archive.Manifest, binaries map[string][]byte, opts Options) (string, *report.Report, error) {
	r := &run{
		man:         man,
		binaries:    binaries,
		opts:        opts,
		rep:         report.New(),
		docLabels:   make(map[string]string),
		spanLabels:  make(map[string]string),
		setIDByHash: make(map[string]string),
		docByHash:   make(map[string]string),
		annotToDoc:  make(map[string]string),
		docRemap:    NewRemapTable(),
	}

	var err error
	switch archive.DetectFormat(man) {
	case archive.FormatV2:
		err = i.importV2(ctx, r)
	default:
		err = i.importLegacy(ctx, r)
	}
	if err != nil {
		return "", r.rep, err
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "import finished",
		"corpus_id", r.corpusID,
		"documents", len(r.docByHash),
		"deduplicated", r.rep.Deduplicated,
		"skipped", r.rep.SkipCount(""))

	return r.corpusID, r.rep, nil
}

// importV2 rebuilds a full-fidelity archive. Steps run in dependency order:
// each section only references ids produced by earlier sections.
func (i *Importer) importV2(ctx context.Context, r *run) error {
	if err := i.ensureCorpus(ctx, r); err != nil {
		return err
	}
	if err := i.createLabels(ctx, r); err != nil {
		return err
	}

	i.importStructuralSets(ctx, r)
	i.importDocuments(ctx, r)
	pathToFolder := i.importFolders(ctx, r)
	i.importVersionPaths(ctx, r, pathToFolder)
	i.importRelationships(ctx, r)
	i.applyAgentConfig(ctx, r)
	i.importDescription(ctx, r)
	i.importConversations(ctx, r)

	return nil
}

// ensureCorpus creates the target corpus and label set, or loads the merge
// target. A corpus being merged into that has no label set yet gets one
// created from the manifest.
func (i *Importer) ensureCorpus(ctx context.Context, r *run) error {
	r.actorID = i.ensureUser(ctx, r.opts.ActorEmail, "")

	if r.opts.TargetCorpusID != "" {
		corpus, err := i.stores.Corpora.Get(ctx, r.opts.TargetCorpusID)
		if err != nil {
			return fmt.Errorf("failed to load merge target corpus %s: %w", r.opts.TargetCorpusID, err)
		}
		r.corpusID = corpus.ID
		r.labelSetID = corpus.LabelSetID

		if r.labelSetID == "" {
			labelSet := &storage.LabelSetRecord{
				Title:       r.man.LabelSet.Title,
				Description: r.man.LabelSet.Description,
			}
			if err := i.stores.LabelSets.Create(ctx, labelSet); err != nil {
				return fmt.Errorf("failed to create label set: %w", err)
			}
			if err := i.stores.Corpora.SetLabelSet(ctx, corpus.ID, labelSet.ID); err != nil {
				return fmt.Errorf("failed to attach label set: %w", err)
			}
			r.labelSetID = labelSet.ID
		}
		return nil
	}

	labelSet := &storage.LabelSetRecord{
		Title:       r.man.LabelSet.Title,
		Description: r.man.LabelSet.Description,
	}
	if err := i.stores.LabelSets.Create(ctx, labelSet); err != nil {
		return fmt.Errorf("failed to create label set: %w", err)
	}

	creatorID := i.ensureUser(ctx, r.man.Corpus.CreatorEmail, r.actorID)
	corpus := &storage.CorpusRecord{
		Title:      r.man.Corpus.Title,
		LabelSetID: labelSet.ID,
		CreatorID:  creatorID,
	}
	if err := i.stores.Corpora.Create(ctx, corpus); err != nil {
		return fmt.Errorf("failed to create corpus: %w", err)
	}

	r.corpusID = corpus.ID
	r.labelSetID = labelSet.ID
	return nil
}

// createLabels materializes the manifest's label maps inside the target label
// set and records the name to id mappings used by every later section.
func (i *Importer) createLabels(ctx context.Context, r *run) error {
	for name, rec := range r.man.DocLabels {
		label, err := i.stores.Labels.GetOrCreate(ctx, &storage.LabelRecord{
			LabelSetID:  r.labelSetID,
			Text:        rec.Text,
			Color:       rec.Color,
			Description: rec.Description,
			LabelType:   storage.LabelTypeDoc,
		})
		if err != nil {
			return fmt.Errorf("failed to create doc label %s: %w", name, err)
		}
		r.docLabels[name] = label.ID
	}

	for name, rec := range r.man.TextLabels {
		label, err := i.stores.Labels.GetOrCreate(ctx, &storage.LabelRecord{
			LabelSetID:  r.labelSetID,
			Text:        rec.Text,
			Color:       rec.Color,
			Description: rec.Description,
			LabelType:   storage.LabelTypeSpan,
		})
		if err != nil {
			return fmt.Errorf("failed to create text label %s: %w", name, err)
		}
		r.spanLabels[name] = label.ID
	}

	return nil
}

// importStructuralSets rebuilds each structural set, reusing an existing set
// when one with the same content hash is already present. Annotation ids are
// remapped per set; ids from one set never resolve inside another.
func (i *Importer) importStructuralSets(ctx context.Context, r *run) {
	logger := contextutil.LoggerFromContext(ctx)

	hashes := make([]string, 0, len(r.man.StructuralSets))
	for hash := range r.man.StructuralSets {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)

	for _, hash := range hashes {
		setRec := r.man.StructuralSets[hash]

		existing, err := i.stores.StructuralSets.GetByHash(ctx, hash)
		if err == nil {
			r.setIDByHash[hash] = existing.ID
			r.rep.Deduplicated++
			logger.DebugContext(ctx, "reusing structural set", "file_hash", hash, "structural_set_id", existing.ID)
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			logger.WarnContext(ctx, "skipping structural set", "file_hash", hash, "error", err)
			r.rep.Skip(report.KindStructuralSet, hash, report.ReasonStoreFailure, err.Error())
			continue
		}

		set := &storage.StructuralSetRecord{FileHash: hash}
		if err := i.stores.StructuralSets.Create(ctx, set); err != nil {
			logger.WarnContext(ctx, "skipping structural set", "file_hash", hash, "error", err)
			r.rep.Skip(report.KindStructuralSet, hash, report.ReasonStoreFailure, err.Error())
			continue
		}

		remap := NewRemapTable()
		i.importAnnotationForest(ctx, r, setRec.Annotations, remap, func(a *storage.AnnotationRecord) {
			a.StructuralSetID = set.ID
			a.IsStructural = true
		})

		for _, relRec := range setRec.Relationships {
			i.insertRelationship(ctx, r, relRec, remap, func(rel *storage.RelationshipRecord) {
				rel.StructuralSetID = set.ID
				rel.IsStructural = true
			})
		}

		r.setIDByHash[hash] = set.ID
	}
}

// importAnnotationForest inserts an annotation list in two passes: first all
// nodes, then the parent links, so forward parent references resolve no
// matter the archive's ordering. Cycles cannot survive this: a node only ever
// points at another inserted node.
func (i *Importer) importAnnotationForest(ctx context.Context, r *run, annotations []archive.AnnotationRecord, remap *RemapTable, customize func(*storage.AnnotationRecord)) {
	logger := contextutil.LoggerFromContext(ctx)

	for _, rec := range annotations {
		labelID, ok := r.spanLabels[rec.Label]
		if !ok {
			label, err := i.stores.Labels.GetOrCreate(ctx, &storage.LabelRecord{
				LabelSetID: r.labelSetID,
				Text:       rec.Label,
				LabelType:  storage.LabelTypeSpan,
			})
			if err != nil {
				logger.WarnContext(ctx, "skipping annotation", "export_id", rec.ExportID, "error", err)
				r.rep.Skip(report.KindAnnotation, rec.ExportID, report.ReasonMissingLabel, rec.Label)
				continue
			}
			labelID = label.ID
			r.spanLabels[rec.Label] = labelID
		}

		a := &storage.AnnotationRecord{
			LabelID:    labelID,
			Page:       rec.Page,
			RawText:    rec.RawText,
			BoundsJSON: rec.BoundsJSON,
			CreatorID:  r.actorID,
		}
		customize(a)

		if err := i.stores.Annotations.Insert(ctx, a); err != nil {
			logger.WarnContext(ctx, "skipping annotation", "export_id", rec.ExportID, "error", err)
			r.rep.Skip(report.KindAnnotation, rec.ExportID, report.ReasonStoreFailure, err.Error())
			continue
		}
		remap.Add(rec.ExportID, a.ID)
	}

	for _, rec := range annotations {
		if rec.ParentID == "" {
			continue
		}
		id, ok := remap.Resolve(rec.ExportID)
		if !ok {
			continue // the node itself was skipped
		}
		parentID, ok := remap.Resolve(rec.ParentID)
		if !ok {
			logger.WarnContext(ctx, "dropping annotation parent link", "export_id", rec.ExportID, "parent_export_id", rec.ParentID)
			r.rep.Skip(report.KindAnnotation, rec.ExportID, report.ReasonMissingReference, "parent "+rec.ParentID)
			continue
		}
		if err := i.stores.Annotations.SetParent(ctx, id, parentID); err != nil {
			logger.WarnContext(ctx, "dropping annotation parent link", "export_id", rec.ExportID, "error", err)
			r.rep.Skip(report.KindAnnotation, rec.ExportID, report.ReasonStoreFailure, err.Error())
		}
	}
}

// insertRelationship resolves a relationship's edge ids through the given
// remap table and inserts it. A relationship whose sources or targets all
// fail to resolve is skipped.
func (i *Importer) insertRelationship(ctx context.Context, r *run, rec archive.RelationshipRecord, remap *RemapTable, customize func(*storage.RelationshipRecord)) {
	logger := contextutil.LoggerFromContext(ctx)

	sources := remap.ResolveAll(rec.SourceIDs)
	targets := remap.ResolveAll(rec.TargetIDs)
	if len(sources) == 0 || len(targets) == 0 {
		logger.WarnContext(ctx, "skipping relationship", "export_id", rec.ExportID, "label", rec.Label)
		r.rep.Skip(report.KindRelationship, rec.ExportID, report.ReasonMissingReference, "unresolvable edge annotations")
		return
	}

	label, err := i.stores.Labels.GetOrCreate(ctx, &storage.LabelRecord{
		LabelSetID: r.labelSetID,
		Text:       rec.Label,
		LabelType:  storage.LabelTypeRelationship,
	})
	if err != nil {
		logger.WarnContext(ctx, "skipping relationship", "export_id", rec.ExportID, "error", err)
		r.rep.Skip(report.KindRelationship, rec.ExportID, report.ReasonMissingLabel, rec.Label)
		return
	}

	rel := &storage.RelationshipRecord{
		LabelID:   label.ID,
		SourceIDs: sources,
		TargetIDs: targets,
	}
	customize(rel)

	if err := i.stores.Relationships.Insert(ctx, rel); err != nil {
		logger.WarnContext(ctx, "skipping relationship", "export_id", rec.ExportID, "error", err)
		r.rep.Skip(report.KindRelationship, rec.ExportID, report.ReasonStoreFailure, err.Error())
	}
}

// importDocuments rebuilds every archived document: the record, the binary
// and the user annotations. A document stays backend-locked until its whole
// subtree is in place.
func (i *Importer) importDocuments(ctx context.Context, r *run) {
	logger := contextutil.LoggerFromContext(ctx)

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

		doc := &storage.DocumentRecord{
			ID:              uuid.New().String(),
			Title:           rec.Title,
			FileName:        rec.FileName,
			FileHash:        rec.FileHash,
			TextContent:     rec.Content,
			StructuralSetID: r.setIDByHash[rec.StructuralSetHash],
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

		if err := i.stores.Documents.SetBackendLock(ctx, doc.ID, false); err != nil {
			logger.WarnContext(ctx, "failed to release document lock", "document_id", doc.ID, "error", err)
		}
		r.docByHash[rec.FileHash] = doc.ID
	}
}

// importDocAnnotations attaches one document's label annotations and span
// annotation forest.
func (i *Importer) importDocAnnotations(ctx context.Context, r *run, docID string, rec archive.DocumentRecord) {
	logger := contextutil.LoggerFromContext(ctx)

	for _, labelName := range rec.DocLabels {
		labelID, ok := r.docLabels[labelName]
		if !ok {
			logger.WarnContext(ctx, "skipping document label", "document_id", docID, "label", labelName)
			r.rep.Skip(report.KindLabel, labelName, report.ReasonMissingLabel, "document "+docID)
			continue
		}
		a := &storage.AnnotationRecord{
			DocumentID: docID,
			CorpusID:   r.corpusID,
			LabelID:    labelID,
			CreatorID:  r.actorID,
		}
		if err := i.stores.Annotations.Insert(ctx, a); err != nil {
			logger.WarnContext(ctx, "skipping document label", "document_id", docID, "error", err)
			r.rep.Skip(report.KindLabel, labelName, report.ReasonStoreFailure, err.Error())
		}
	}

	i.importAnnotationForest(ctx, r, rec.Annotations, r.docRemap, func(a *storage.AnnotationRecord) {
		a.DocumentID = docID
		a.CorpusID = r.corpusID
	})

	for _, annRec := range rec.Annotations {
		if id, ok := r.docRemap.Resolve(annRec.ExportID); ok {
			r.annotToDoc[id] = docID
		}
	}
}

// importFolders rebuilds the folder tree shallowest-first, so every parent
// exists before its children regardless of archive ordering. It returns the
// materialized path to folder id map used by the version path section.
func (i *Importer) importFolders(ctx context.Context, r *run) map[string]string {
	logger := contextutil.LoggerFromContext(ctx)
	pathToFolder := make(map[string]string)

	folders := make([]archive.FolderRecord, len(r.man.Folders))
	copy(folders, r.man.Folders)
	sort.SliceStable(folders, func(a, b int) bool {
		return strings.Count(folders[a].Path, "/") < strings.Count(folders[b].Path, "/")
	})

	remap := NewRemapTable()
	pathByID := make(map[string]string)
	for _, rec := range folders {
		parentID := ""
		parentPath := ""
		if rec.ParentID != "" {
			id, ok := remap.Resolve(rec.ParentID)
			if !ok {
				logger.WarnContext(ctx, "skipping folder", "export_id", rec.ExportID, "name", rec.Name)
				r.rep.Skip(report.KindFolder, rec.ExportID, report.ReasonMissingReference, "parent "+rec.ParentID)
				continue
			}
			parentID = id
			parentPath = pathByID[id]
		}

		path := rec.Name
		if parentPath != "" {
			path = parentPath + "/" + rec.Name
		}

		tagsJSON := "[]"
		if len(rec.Tags) > 0 {
			raw, err := json.Marshal(rec.Tags)
			if err == nil {
				tagsJSON = string(raw)
			}
		}

		f := &storage.FolderRecord{
			CorpusID:    r.corpusID,
			Name:        rec.Name,
			Description: rec.Description,
			Color:       rec.Color,
			Icon:        rec.Icon,
			TagsJSON:    tagsJSON,
			IsVisible:   rec.IsVisible,
			ParentID:    parentID,
			Path:        path,
		}
		if err := i.stores.Folders.Insert(ctx, f); err != nil {
			logger.WarnContext(ctx, "skipping folder", "export_id", rec.ExportID, "error", err)
			r.rep.Skip(report.KindFolder, rec.ExportID, report.ReasonStoreFailure, err.Error())
			continue
		}

		remap.Add(rec.ExportID, f.ID)
		pathToFolder[path] = f.ID
		pathByID[f.ID] = path
	}

	return pathToFolder
}

// importVersionPaths rebuilds the version history trees. Records are applied
// in (path, version_number) order so a parent version is always inserted
// before its children, which reference it by (path, parent_version_number).
// A manifest claiming a second live current version for the same lineage is
// rejected by the store's uniqueness rule; the duplicate is skipped and
// reported like any other store rejection.
func (i *Importer) importVersionPaths(ctx context.Context, r *run, pathToFolder map[string]string) {
	logger := contextutil.LoggerFromContext(ctx)

	paths := make([]archive.VersionPathRecord, len(r.man.VersionPaths))
	copy(paths, r.man.VersionPaths)
	sort.SliceStable(paths, func(a, b int) bool {
		if paths[a].Path != paths[b].Path {
			return paths[a].Path < paths[b].Path
		}
		return paths[a].VersionNumber < paths[b].VersionNumber
	})

	vpByKey := make(map[string]string)
	for _, rec := range paths {
		key := versionKey(rec.Path, rec.VersionNumber)

		docID, ok := r.docByHash[rec.DocHash]
		if !ok {
			logger.WarnContext(ctx, "skipping version path", "key", key, "doc_hash", rec.DocHash)
			r.rep.Skip(report.KindVersionPath, key, report.ReasonMissingReference, "document "+rec.DocHash)
			continue
		}

		parentID := ""
		if rec.ParentVersionNumber != nil {
			id, ok := vpByKey[versionKey(rec.Path, *rec.ParentVersionNumber)]
			if !ok {
				logger.WarnContext(ctx, "skipping version path", "key", key, "parent_version", *rec.ParentVersionNumber)
				r.rep.Skip(report.KindVersionPath, key, report.ReasonMissingReference,
					"parent version "+strconv.Itoa(*rec.ParentVersionNumber))
				continue
			}
			parentID = id
		}

		createdAt, err := parseArchiveTime(rec.CreatedAt)
		if err != nil {
			logger.WarnContext(ctx, "skipping version path", "key", key, "error", err)
			r.rep.Skip(report.KindVersionPath, key, report.ReasonBadTimestamp, rec.CreatedAt)
			continue
		}

		vp := &storage.VersionPathRecord{
			CorpusID:      r.corpusID,
			DocumentID:    docID,
			FolderID:      pathToFolder[rec.FolderPath],
			Path:          rec.Path,
			VersionNumber: rec.VersionNumber,
			ParentID:      parentID,
			IsCurrent:     rec.IsCurrent,
			IsDeleted:     rec.IsDeleted,
			CreatedAt:     createdAt,
		}
		if err := i.stores.VersionPaths.Insert(ctx, vp); err != nil {
			logger.WarnContext(ctx, "skipping version path", "key", key, "error", err)
			r.rep.Skip(report.KindVersionPath, key, report.ReasonStoreFailure, err.Error())
			continue
		}

		vpByKey[key] = vp.ID
	}
}

func versionKey(path string, version int) string {
	return path + "#" + strconv.Itoa(version)
}

// importRelationships rebuilds the corpus- and document-scoped relationships.
// Structural relationships are not processed here; they were already rebuilt
// inside their owning structural set.
func (i *Importer) importRelationships(ctx context.Context, r *run) {
	for _, rec := range r.man.Relationships {
		if rec.Structural {
			continue
		}

		corpusScoped := rec.CorpusScoped
		i.insertRelationship(ctx, r, rec, r.docRemap, func(rel *storage.RelationshipRecord) {
			if corpusScoped {
				rel.CorpusID = r.corpusID
				return
			}
			// Document-scoped: the owning document is the one holding the
			// first resolved source annotation.
			if len(rel.SourceIDs) > 0 {
				rel.DocumentID = r.annotToDoc[rel.SourceIDs[0]]
			}
		})
	}
}

// applyAgentConfig overwrites the corpus agent instruction fields from the
// manifest, when present.
func (i *Importer) applyAgentConfig(ctx context.Context, r *run) {
	if r.man.AgentConfig == nil {
		return
	}
	err := i.stores.Corpora.UpdateAgentConfig(ctx, r.corpusID,
		r.man.AgentConfig.CorpusAgentInstructions,
		r.man.AgentConfig.DocumentAgentInstructions)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to apply agent config",
			"corpus_id", r.corpusID, "error", err)
	}
}

// importDescription restores the markdown description and its edit history.
func (i *Importer) importDescription(ctx context.Context, r *run) {
	logger := contextutil.LoggerFromContext(ctx)

	if r.man.Description != "" {
		if err := i.stores.Corpora.SetDescription(ctx, r.corpusID, r.man.Description); err != nil {
			logger.WarnContext(ctx, "failed to set description", "corpus_id", r.corpusID, "error", err)
		}
	}

	for _, rec := range r.man.DescriptionRevisions {
		key := strconv.Itoa(rec.Version)

		createdAt, err := parseArchiveTime(rec.CreatedAt)
		if err != nil {
			logger.WarnContext(ctx, "skipping description revision", "version", rec.Version, "error", err)
			r.rep.Skip(report.KindRevision, key, report.ReasonBadTimestamp, rec.CreatedAt)
			continue
		}

		rev := &storage.RevisionRecord{
			CorpusID:  r.corpusID,
			Version:   rec.Version,
			Content:   rec.Content,
			AuthorID:  i.ensureUser(ctx, rec.AuthorEmail, r.actorID),
			CreatedAt: createdAt,
		}
		if err := i.stores.Revisions.Insert(ctx, rev); err != nil {
			logger.WarnContext(ctx, "skipping description revision", "version", rec.Version, "error", err)
			r.rep.Skip(report.KindRevision, key, report.ReasonStoreFailure, err.Error())
		}
	}
}

// importConversations restores chat threads, messages and votes, rewiring
// the conversation and message references through remap tables.
func (i *Importer) importConversations(ctx context.Context, r *run) {
	logger := contextutil.LoggerFromContext(ctx)

	convRemap := NewRemapTable()
	for _, rec := range r.man.Conversations {
		createdAt, err := parseArchiveTime(rec.CreatedAt)
		if err != nil {
			logger.WarnContext(ctx, "skipping conversation", "export_id", rec.ExportID, "error", err)
			r.rep.Skip(report.KindConversation, rec.ExportID, report.ReasonBadTimestamp, rec.CreatedAt)
			continue
		}

		conv := &storage.ConversationRecord{
			CorpusID:  r.corpusID,
			Title:     rec.Title,
			CreatorID: i.ensureUser(ctx, rec.CreatorEmail, r.actorID),
			CreatedAt: createdAt,
		}
		if err := i.stores.Conversations.Insert(ctx, conv); err != nil {
			logger.WarnContext(ctx, "skipping conversation", "export_id", rec.ExportID, "error", err)
			r.rep.Skip(report.KindConversation, rec.ExportID, report.ReasonStoreFailure, err.Error())
			continue
		}
		convRemap.Add(rec.ExportID, conv.ID)
	}

	msgRemap := NewRemapTable()
	for _, rec := range r.man.Messages {
		convID, ok := convRemap.Resolve(rec.ConversationID)
		if !ok {
			logger.WarnContext(ctx, "skipping message", "export_id", rec.ExportID, "conversation", rec.ConversationID)
			r.rep.Skip(report.KindMessage, rec.ExportID, report.ReasonMissingReference, "conversation "+rec.ConversationID)
			continue
		}

		createdAt, err := parseArchiveTime(rec.CreatedAt)
		if err != nil {
			logger.WarnContext(ctx, "skipping message", "export_id", rec.ExportID, "error", err)
			r.rep.Skip(report.KindMessage, rec.ExportID, report.ReasonBadTimestamp, rec.CreatedAt)
			continue
		}

		msg := &storage.MessageRecord{
			ConversationID: convID,
			Content:        rec.Content,
			MsgType:        rec.MsgType,
			CreatorID:      i.ensureUser(ctx, rec.CreatorEmail, r.actorID),
			CreatedAt:      createdAt,
		}
		if err := i.stores.Messages.Insert(ctx, msg); err != nil {
			logger.WarnContext(ctx, "skipping message", "export_id", rec.ExportID, "error", err)
			r.rep.Skip(report.KindMessage, rec.ExportID, report.ReasonStoreFailure, err.Error())
			continue
		}
		msgRemap.Add(rec.ExportID, msg.ID)
	}

	for _, rec := range r.man.MessageVotes {
		msgID, ok := msgRemap.Resolve(rec.MessageID)
		if !ok {
			logger.WarnContext(ctx, "skipping vote", "message", rec.MessageID)
			r.rep.Skip(report.KindVote, rec.MessageID, report.ReasonMissingReference, "message "+rec.MessageID)
			continue
		}

		vote := &storage.VoteRecord{
			MessageID: msgID,
			Upvote:    rec.Upvote,
			CreatorID: i.ensureUser(ctx, rec.CreatorEmail, r.actorID),
		}
		if err := i.stores.Votes.Insert(ctx, vote); err != nil {
			logger.WarnContext(ctx, "skipping vote", "message", rec.MessageID, "error", err)
			r.rep.Skip(report.KindVote, rec.MessageID, report.ReasonStoreFailure, err.Error())
		}
	}
}

// ensureUser resolves an email to a user id, creating the user if necessary.
// An empty email or a failed lookup falls back to the given id.
func (i *Importer) ensureUser(ctx context.Context, email, fallbackID string) string {
	if email == "" {
		return fallbackID
	}

	user, err := i.stores.Users.GetByEmail(ctx, email)
	if err == nil {
		return user.ID
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fallbackID
	}

	u := &storage.UserRecord{Email: email, Name: nameFromEmail(email)}
	if err := i.stores.Users.Create(ctx, u); err != nil {
		return fallbackID
	}
	return u.ID
}

func nameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// parseArchiveTime parses an optional RFC3339 timestamp. The empty string is
// valid and maps to the zero time, which the storage layer fills in.
func parseArchiveTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
