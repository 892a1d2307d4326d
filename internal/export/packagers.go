package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"corpushub/internal/archive"
	"corpushub/internal/contextutil"
	"corpushub/internal/report"
	"corpushub/internal/storage"
)

// packageLabelSet loads the label set and partitions its labels by type into
// the manifest's name-keyed maps. Relationship labels are not listed here;
// they are recreated by name from the relationship records on import.
func (e *Exporter) packageLabelSet(ctx context.Context, labelSetID string, man *archive.Manifest) error {
	if labelSetID == "" {
		return fmt.Errorf("corpus has no label set")
	}

	labelSet, err := e.stores.LabelSets.Get(ctx, labelSetID)
	if err != nil {
		return fmt.Errorf("failed to load label set %s: %w", labelSetID, err)
	}
	man.LabelSet = archive.LabelSetRecord{
		ID:          labelSet.ID,
		Title:       labelSet.Title,
		Description: labelSet.Description,
	}

	labels, err := e.stores.Labels.ListBySet(ctx, labelSetID)
	if err != nil {
		return fmt.Errorf("failed to list labels: %w", err)
	}
	for _, label := range labels {
		rec := archive.LabelRecord{
			ID:          label.ID,
			Text:        label.Text,
			Color:       label.Color,
			Description: label.Description,
			LabelType:   label.LabelType,
		}
		switch label.LabelType {
		case storage.LabelTypeDoc:
			man.DocLabels[label.Text] = rec
		case storage.LabelTypeSpan:
			man.TextLabels[label.Text] = rec
		}
	}

	return nil
}

// packageDocument loads one document, its binary and its user annotations.
// It returns the archive-relative binary name, the manifest record, the
// binary content and the document's structural set id (empty if none).
func (e *Exporter) packageDocument(ctx context.Context, documentID, corpusID string) (string, *archive.DocumentRecord, []byte, string, error) {
	doc, err := e.stores.Documents.Get(ctx, documentID)
	if err != nil {
		return "", nil, nil, "", fmt.Errorf("failed to load document: %w", err)
	}

	binary, err := e.blobs.Read(doc.FileKey)
	if err != nil {
		return "", nil, nil, "", fmt.Errorf("failed to read document binary: %w", err)
	}

	rec := &archive.DocumentRecord{
		Title:    doc.Title,
		FileName: doc.FileName,
		FileHash: doc.FileHash,
		Content:  doc.TextContent,
	}

	if doc.StructuralSetID != "" {
		set, err := e.stores.StructuralSets.Get(ctx, doc.StructuralSetID)
		if err != nil {
			return "", nil, nil, "", fmt.Errorf("failed to load structural set: %w", err)
		}
		rec.StructuralSetHash = set.FileHash
	}

	annotations, err := e.stores.Annotations.ListByDocumentAndCorpus(ctx, documentID, corpusID)
	if err != nil {
		return "", nil, nil, "", fmt.Errorf("failed to list annotations: %w", err)
	}
	for _, a := range annotations {
		switch a.LabelType {
		case storage.LabelTypeDoc:
			rec.DocLabels = append(rec.DocLabels, a.LabelText)
		default:
			rec.Annotations = append(rec.Annotations, archive.AnnotationRecord{
				ExportID:   a.ID,
				Label:      a.LabelText,
				Page:       a.Page,
				RawText:    a.RawText,
				BoundsJSON: a.BoundsJSON,
				ParentID:   a.ParentID,
			})
		}
	}

	// Binary names must be unique per archive even when two documents share
	// a filename, so the document id is part of the entry name.
	name := doc.ID + "_" + doc.FileName
	return name, rec, binary, doc.StructuralSetID, nil
}

// packageStructuralSets packages each referenced structural set under its
// content hash: the parse-derived annotation forest plus the relationships
// internal to the set.
func (e *Exporter) packageStructuralSets(ctx context.Context, setIDs map[string]struct{}, man *archive.Manifest, rep *report.Report) {
	logger := contextutil.LoggerFromContext(ctx)

	for setID := range setIDs {
		set, err := e.stores.StructuralSets.Get(ctx, setID)
		if err != nil {
			logger.WarnContext(ctx, "skipping structural set", "structural_set_id", setID, "error", err)
			rep.Skip(report.KindStructuralSet, setID, report.ReasonStoreFailure, err.Error())
			continue
		}

		annotations, err := e.stores.Annotations.ListByStructuralSet(ctx, setID)
		if err != nil {
			logger.WarnContext(ctx, "skipping structural set", "structural_set_id", setID, "error", err)
			rep.Skip(report.KindStructuralSet, setID, report.ReasonStoreFailure, err.Error())
			continue
		}
		relationships, err := e.stores.Relationships.ListByStructuralSet(ctx, setID)
		if err != nil {
			logger.WarnContext(ctx, "skipping structural set", "structural_set_id", setID, "error", err)
			rep.Skip(report.KindStructuralSet, setID, report.ReasonStoreFailure, err.Error())
			continue
		}

		setRec := archive.StructuralSetRecord{FileHash: set.FileHash}
		for _, a := range annotations {
			setRec.Annotations = append(setRec.Annotations, archive.AnnotationRecord{
				ExportID:   a.ID,
				Label:      a.LabelText,
				Page:       a.Page,
				RawText:    a.RawText,
				BoundsJSON: a.BoundsJSON,
				ParentID:   a.ParentID,
				Structural: true,
			})
		}
		for _, rel := range relationships {
			setRec.Relationships = append(setRec.Relationships, archive.RelationshipRecord{
				ExportID:   rel.ID,
				Label:      rel.LabelText,
				Structural: true,
				SourceIDs:  rel.SourceIDs,
				TargetIDs:  rel.TargetIDs,
			})
		}

		if man.StructuralSets == nil {
			man.StructuralSets = make(map[string]archive.StructuralSetRecord)
		}
		man.StructuralSets[set.FileHash] = setRec
	}
}

// packageFolders packages the corpus folder tree and returns a folder id to
// materialized path map for the version path records. Paths are recomputed
// from the parent chain rather than trusted from the stored snapshot.
func (e *Exporter) packageFolders(ctx context.Context, corpusID string, man *archive.Manifest, rep *report.Report) map[string]string {
	logger := contextutil.LoggerFromContext(ctx)
	paths := make(map[string]string)

	folders, err := e.stores.Folders.ListByCorpus(ctx, corpusID)
	if err != nil {
		logger.WarnContext(ctx, "skipping folder tree", "corpus_id", corpusID, "error", err)
		rep.Skip(report.KindFolder, corpusID, report.ReasonStoreFailure, err.Error())
		return paths
	}

	// ListByCorpus orders by path, so parents precede their children.
	for _, f := range folders {
		path := f.Name
		if f.ParentID != "" {
			if parentPath, ok := paths[f.ParentID]; ok {
				path = parentPath + "/" + f.Name
			}
		}
		paths[f.ID] = path

		var tags []string
		if f.TagsJSON != "" {
			if err := json.Unmarshal([]byte(f.TagsJSON), &tags); err != nil {
				logger.WarnContext(ctx, "dropping malformed folder tags", "folder_id", f.ID, "error", err)
				tags = nil
			}
		}

		man.Folders = append(man.Folders, archive.FolderRecord{
			ExportID:    f.ID,
			Name:        f.Name,
			Description: f.Description,
			Color:       f.Color,
			Icon:        f.Icon,
			Tags:        tags,
			IsVisible:   f.IsVisible,
			ParentID:    f.ParentID,
			Path:        path,
		})
	}

	return paths
}

// packageVersionPaths packages the full version history of the corpus.
// Documents are referenced by content hash, folders by materialized path and
// parent versions by (path, version_number), so nothing in the section
// depends on database identifiers.
func (e *Exporter) packageVersionPaths(ctx context.Context, corpusID string, docHashes, folderPaths map[string]string, man *archive.Manifest, rep *report.Report) {
	logger := contextutil.LoggerFromContext(ctx)

	history, err := e.stores.VersionPaths.ListByCorpus(ctx, corpusID)
	if err != nil {
		logger.WarnContext(ctx, "skipping version history", "corpus_id", corpusID, "error", err)
		rep.Skip(report.KindVersionPath, corpusID, report.ReasonStoreFailure, err.Error())
		return
	}

	versionByID := make(map[string]*storage.VersionPathRecord, len(history))
	for _, vp := range history {
		versionByID[vp.ID] = vp
	}

	for _, vp := range history {
		hash, ok := docHashes[vp.DocumentID]
		if !ok {
			doc, err := e.stores.Documents.Get(ctx, vp.DocumentID)
			if err != nil {
				logger.WarnContext(ctx, "skipping version path", "version_path_id", vp.ID, "error", err)
				rep.Skip(report.KindVersionPath, vp.ID, report.ReasonMissingReference, err.Error())
				continue
			}
			hash = doc.FileHash
			docHashes[vp.DocumentID] = hash
		}

		rec := archive.VersionPathRecord{
			DocHash:       hash,
			FolderPath:    folderPaths[vp.FolderID],
			Path:          vp.Path,
			VersionNumber: vp.VersionNumber,
			IsCurrent:     vp.IsCurrent,
			IsDeleted:     vp.IsDeleted,
			CreatedAt:     vp.CreatedAt.UTC().Format(time.RFC3339),
		}
		if vp.ParentID != "" {
			if parent, ok := versionByID[vp.ParentID]; ok {
				n := parent.VersionNumber
				rec.ParentVersionNumber = &n
			}
		}

		man.VersionPaths = append(man.VersionPaths, rec)
	}
}

// packageRelationships packages the corpus- and document-scoped relationships.
// Structural-set internal relationships already travel inside their set record.
func (e *Exporter) packageRelationships(ctx context.Context, corpusID string, man *archive.Manifest, rep *report.Report) {
	logger := contextutil.LoggerFromContext(ctx)

	relationships, err := e.stores.Relationships.ListByCorpus(ctx, corpusID)
	if err != nil {
		logger.WarnContext(ctx, "skipping relationships", "corpus_id", corpusID, "error", err)
		rep.Skip(report.KindRelationship, corpusID, report.ReasonStoreFailure, err.Error())
		return
	}

	for _, rel := range relationships {
		man.Relationships = append(man.Relationships, archive.RelationshipRecord{
			ExportID:     rel.ID,
			Label:        rel.LabelText,
			Structural:   rel.IsStructural,
			CorpusScoped: rel.CorpusID != "",
			SourceIDs:    rel.SourceIDs,
			TargetIDs:    rel.TargetIDs,
		})
	}
}

// packageRevisions packages the description edit history.
func (e *Exporter) packageRevisions(ctx context.Context, corpusID string, man *archive.Manifest, rep *report.Report) {
	logger := contextutil.LoggerFromContext(ctx)

	revisions, err := e.stores.Revisions.ListByCorpus(ctx, corpusID)
	if err != nil {
		logger.WarnContext(ctx, "skipping description revisions", "corpus_id", corpusID, "error", err)
		rep.Skip(report.KindRevision, corpusID, report.ReasonStoreFailure, err.Error())
		return
	}

	for _, rev := range revisions {
		man.DescriptionRevisions = append(man.DescriptionRevisions, archive.RevisionRecord{
			Version:     rev.Version,
			Content:     rev.Content,
			AuthorEmail: e.emailOf(ctx, rev.AuthorID),
			CreatedAt:   rev.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
}

// packageConversations packages chat threads, their messages and votes.
func (e *Exporter) packageConversations(ctx context.Context, corpusID string, man *archive.Manifest, rep *report.Report) {
	logger := contextutil.LoggerFromContext(ctx)

	conversations, err := e.stores.Conversations.ListByCorpus(ctx, corpusID)
	if err != nil {
		logger.WarnContext(ctx, "skipping conversations", "corpus_id", corpusID, "error", err)
		rep.Skip(report.KindConversation, corpusID, report.ReasonStoreFailure, err.Error())
		return
	}

	for _, conv := range conversations {
		man.Conversations = append(man.Conversations, archive.ConversationRecord{
			ExportID:     conv.ID,
			Title:        conv.Title,
			CreatorEmail: e.emailOf(ctx, conv.CreatorID),
			CreatedAt:    conv.CreatedAt.UTC().Format(time.RFC3339),
		})

		messages, err := e.stores.Messages.ListByConversation(ctx, conv.ID)
		if err != nil {
			logger.WarnContext(ctx, "skipping conversation messages", "conversation_id", conv.ID, "error", err)
			rep.Skip(report.KindMessage, conv.ID, report.ReasonStoreFailure, err.Error())
			continue
		}
		for _, msg := range messages {
			man.Messages = append(man.Messages, archive.MessageRecord{
				ExportID:       msg.ID,
				ConversationID: conv.ID,
				Content:        msg.Content,
				MsgType:        msg.MsgType,
				CreatorEmail:   e.emailOf(ctx, msg.CreatorID),
				CreatedAt:      msg.CreatedAt.UTC().Format(time.RFC3339),
			})

			votes, err := e.stores.Votes.ListByMessage(ctx, msg.ID)
			if err != nil {
				logger.WarnContext(ctx, "skipping message votes", "message_id", msg.ID, "error", err)
				rep.Skip(report.KindVote, msg.ID, report.ReasonStoreFailure, err.Error())
				continue
			}
			for _, vote := range votes {
				man.MessageVotes = append(man.MessageVotes, archive.VoteRecord{
					MessageID:    msg.ID,
					Upvote:       vote.Upvote,
					CreatorEmail: e.emailOf(ctx, vote.CreatorID),
				})
			}
		}
	}
}
