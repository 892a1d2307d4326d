package importer

import (
	"context"
	"database/sql"
	"testing"

	"corpushub/internal/archive"
	"corpushub/internal/blobstore"
	"corpushub/internal/export"
	"corpushub/internal/parser"
	"corpushub/internal/report"
	"corpushub/internal/storage"
)

type env struct {
	db     *sql.DB
	stores *storage.Stores
	blobs  *blobstore.Store
	imp    *Importer
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()

	db, err := storage.New(dir + "/test.db")
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("storage.Migrate() error = %v", err)
	}

	blobs, err := blobstore.NewStore(dir + "/blobs")
	if err != nil {
		t.Fatalf("blobstore.NewStore() error = %v", err)
	}

	stores := storage.NewStores(db)
	return &env{
		db:     db,
		stores: stores,
		blobs:  blobs,
		imp:    NewImporter(stores, blobs),
	}
}

const docContent = "# Intro\n\ntext\n\n## Methods\n\nmore\n"

func intPtr(n int) *int { return &n }

// fullManifest builds a complete current-format archive exercising every
// section: structural set, annotated document, folder tree, version history,
// relationships, agent config, description history and a conversation.
func fullManifest() (*archive.Manifest, map[string][]byte, string) {
	docHash := parser.ContentHash([]byte(docContent))

	man := &archive.Manifest{
		FormatVersion: archive.FormatVersionV2,
		Corpus:        archive.CorpusRecord{Title: "Research Corpus", CreatorEmail: "alice@example.com"},
		LabelSet:      archive.LabelSetRecord{Title: "Research labels"},
		DocLabels: map[string]archive.LabelRecord{
			"reviewed": {Text: "reviewed", LabelType: storage.LabelTypeDoc},
		},
		TextLabels: map[string]archive.LabelRecord{
			"claim": {Text: "claim", LabelType: storage.LabelTypeSpan},
		},
		AnnotatedDocs: map[string]archive.DocumentRecord{
			"doc1_report.md": {
				Title:    "Report",
				FileName: "report.md",
				FileHash: docHash,
				Content:  docContent,
				DocLabels: []string{
					"reviewed",
				},
				Annotations: []archive.AnnotationRecord{
					{ExportID: "a1", Label: "claim", Page: 1, RawText: "first claim"},
					{ExportID: "a2", Label: "claim", Page: 2, RawText: "second claim", ParentID: "a1"},
				},
				StructuralSetHash: docHash,
			},
		},
		StructuralSets: map[string]archive.StructuralSetRecord{
			docHash: {
				FileHash: docHash,
				Annotations: []archive.AnnotationRecord{
					{ExportID: "s1", Label: "heading", RawText: "Intro", Structural: true},
					{ExportID: "s2", Label: "heading", RawText: "Methods", ParentID: "s1", Structural: true},
				},
				Relationships: []archive.RelationshipRecord{
					{ExportID: "sr1", Label: "follows", Structural: true, SourceIDs: []string{"s1"}, TargetIDs: []string{"s2"}},
				},
			},
		},
		Folders: []archive.FolderRecord{
			{ExportID: "f1", Name: "Root", Tags: []string{"test"}, IsVisible: true, Path: "Root"},
			{ExportID: "f2", Name: "Child", IsVisible: true, ParentID: "f1", Path: "Root/Child"},
		},
		VersionPaths: []archive.VersionPathRecord{
			{DocHash: docHash, Path: "report.md", VersionNumber: 1, CreatedAt: "2023-01-01T10:00:00Z"},
			{DocHash: docHash, FolderPath: "Root/Child", Path: "report.md", VersionNumber: 2,
				ParentVersionNumber: intPtr(1), IsCurrent: true, CreatedAt: "2023-02-01T10:00:00Z"},
		},
		Relationships: []archive.RelationshipRecord{
			{ExportID: "r1", Label: "supports", CorpusScoped: true, SourceIDs: []string{"a1"}, TargetIDs: []string{"a2"}},
			{ExportID: "r2", Label: "follows", Structural: true, SourceIDs: []string{"s1"}, TargetIDs: []string{"s2"}},
		},
		AgentConfig: &archive.AgentConfigRecord{CorpusAgentInstructions: "X", DocumentAgentInstructions: "Y"},
		Description: "# About\n",
		DescriptionRevisions: []archive.RevisionRecord{
			{Version: 1, Content: "draft", AuthorEmail: "alice@example.com", CreatedAt: "2023-01-02T09:00:00Z"},
			{Version: 2, Content: "# About\n", AuthorEmail: "bob@example.com", CreatedAt: "2023-01-03T09:00:00Z"},
		},
		Conversations: []archive.ConversationRecord{
			{ExportID: "c1", Title: "Kickoff", CreatorEmail: "alice@example.com", CreatedAt: "2023-01-04T09:00:00Z"},
		},
		Messages: []archive.MessageRecord{
			{ExportID: "m1", ConversationID: "c1", Content: "hi", MsgType: "user",
				CreatorEmail: "alice@example.com", CreatedAt: "2023-01-04T09:01:00Z"},
			{ExportID: "m2", ConversationID: "c1", Content: "hello", MsgType: "assistant",
				CreatedAt: "2023-01-04T09:02:00Z"},
		},
		MessageVotes: []archive.VoteRecord{
			{MessageID: "m2", Upvote: true, CreatorEmail: "alice@example.com"},
		},
	}

	binaries := map[string][]byte{"doc1_report.md": []byte(docContent)}
	return man, binaries, docHash
}

func TestImport_V2FullGraph(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	man, binaries, docHash := fullManifest()

	corpusID, rep, err := e.imp.Import(ctx, man, binaries, Options{ActorEmail: "importer@example.com"})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if corpusID == "" {
		t.Fatal("Import() returned no corpus id")
	}
	if got := rep.SkipCount(""); got != 0 {
		t.Fatalf("Import() skipped %d entities, want 0: %+v", got, rep.Skipped)
	}

	corpus, err := e.stores.Corpora.Get(ctx, corpusID)
	if err != nil {
		t.Fatalf("Corpora.Get() error = %v", err)
	}
	if corpus.Title != "Research Corpus" {
		t.Errorf("corpus title = %q, want Research Corpus", corpus.Title)
	}
	if corpus.CorpusAgentInstructions != "X" || corpus.DocumentAgentInstructions != "Y" {
		t.Errorf("agent config = (%q, %q), want (X, Y)",
			corpus.CorpusAgentInstructions, corpus.DocumentAgentInstructions)
	}
	if corpus.DescriptionMD != "# About\n" {
		t.Errorf("description = %q, want manifest description", corpus.DescriptionMD)
	}

	// Folder tree with remapped parent and recomputed path.
	folders, err := e.stores.Folders.ListByCorpus(ctx, corpusID)
	if err != nil {
		t.Fatalf("Folders.ListByCorpus() error = %v", err)
	}
	if len(folders) != 2 {
		t.Fatalf("imported %d folders, want 2", len(folders))
	}
	root, child := folders[0], folders[1]
	if root.Name != "Root" || child.Name != "Child" {
		t.Fatalf("folder order = [%s, %s], want [Root, Child]", root.Name, child.Name)
	}
	if root.TagsJSON != `["test"]` {
		t.Errorf("root tags = %q, want [\"test\"]", root.TagsJSON)
	}
	if child.ParentID != root.ID {
		t.Errorf("child parent = %q, want root id %q", child.ParentID, root.ID)
	}
	if child.Path != "Root/Child" {
		t.Errorf("child path = %q, want Root/Child", child.Path)
	}

	// Version lineage: v2 parented on v1, filed under the child folder.
	paths, err := e.stores.VersionPaths.ListByCorpus(ctx, corpusID)
	if err != nil {
		t.Fatalf("VersionPaths.ListByCorpus() error = %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("imported %d version paths, want 2", len(paths))
	}
	v1, v2 := paths[0], paths[1]
	if v1.VersionNumber != 1 || v2.VersionNumber != 2 {
		t.Fatalf("version order = [%d, %d], want [1, 2]", v1.VersionNumber, v2.VersionNumber)
	}
	if v2.ParentID != v1.ID {
		t.Errorf("v2 parent = %q, want v1 id %q", v2.ParentID, v1.ID)
	}
	if v1.IsCurrent || !v2.IsCurrent {
		t.Errorf("current flags = (%v, %v), want only v2 current", v1.IsCurrent, v2.IsCurrent)
	}
	if v2.FolderID != child.ID {
		t.Errorf("v2 folder = %q, want child folder %q", v2.FolderID, child.ID)
	}
	if v1.DocumentID != v2.DocumentID {
		t.Error("versions of the same content hash reference different documents")
	}

	// The document came out unlocked with its binary stored.
	doc, err := e.stores.Documents.Get(ctx, v2.DocumentID)
	if err != nil {
		t.Fatalf("Documents.Get() error = %v", err)
	}
	if doc.BackendLock {
		t.Error("imported document still backend-locked")
	}
	if doc.FileHash != docHash {
		t.Errorf("document hash = %q, want %q", doc.FileHash, docHash)
	}
	binary, err := e.blobs.Read(doc.FileKey)
	if err != nil {
		t.Fatalf("blobs.Read() error = %v", err)
	}
	if string(binary) != docContent {
		t.Error("stored binary differs from archive entry")
	}

	// User annotations: doc label + two remapped spans with parent rewired.
	annotations, err := e.stores.Annotations.ListByDocumentAndCorpus(ctx, doc.ID, corpusID)
	if err != nil {
		t.Fatalf("Annotations.ListByDocumentAndCorpus() error = %v", err)
	}
	if len(annotations) != 3 {
		t.Fatalf("imported %d document annotations, want 3 (1 label + 2 spans)", len(annotations))
	}
	spansByText := make(map[string]*storage.AnnotationRecord)
	for _, a := range annotations {
		if a.LabelType == storage.LabelTypeSpan {
			spansByText[a.RawText] = a
		}
		if a.ID == "a1" || a.ID == "a2" {
			t.Errorf("annotation kept export-local id %q, want a fresh id", a.ID)
		}
	}
	first, second := spansByText["first claim"], spansByText["second claim"]
	if first == nil || second == nil {
		t.Fatal("span annotations missing")
	}
	if second.ParentID != first.ID {
		t.Errorf("span parent = %q, want %q", second.ParentID, first.ID)
	}

	// Structural set rebuilt with its internal relationship.
	set, err := e.stores.StructuralSets.GetByHash(ctx, docHash)
	if err != nil {
		t.Fatalf("StructuralSets.GetByHash() error = %v", err)
	}
	if doc.StructuralSetID != set.ID {
		t.Errorf("document set = %q, want %q", doc.StructuralSetID, set.ID)
	}
	structural, err := e.stores.Annotations.ListByStructuralSet(ctx, set.ID)
	if err != nil {
		t.Fatalf("Annotations.ListByStructuralSet() error = %v", err)
	}
	if len(structural) != 2 {
		t.Fatalf("structural set holds %d annotations, want 2", len(structural))
	}
	internal, err := e.stores.Relationships.ListByStructuralSet(ctx, set.ID)
	if err != nil {
		t.Fatalf("Relationships.ListByStructuralSet() error = %v", err)
	}
	if len(internal) != 1 {
		t.Fatalf("structural set holds %d relationships, want 1", len(internal))
	}

	// The corpus relationship listing holds only the user relationship; the
	// structural-flagged top-level record was not duplicated.
	rels, err := e.stores.Relationships.ListByCorpus(ctx, corpusID)
	if err != nil {
		t.Fatalf("Relationships.ListByCorpus() error = %v", err)
	}
	if len(rels) != 1 {
		t.Fatalf("imported %d corpus relationships, want 1", len(rels))
	}
	if rels[0].LabelText != "supports" || rels[0].CorpusID != corpusID {
		t.Errorf("relationship = %q scoped to %q, want supports scoped to corpus", rels[0].LabelText, rels[0].CorpusID)
	}

	// Description history and conversation thread.
	revisions, err := e.stores.Revisions.ListByCorpus(ctx, corpusID)
	if err != nil {
		t.Fatalf("Revisions.ListByCorpus() error = %v", err)
	}
	if len(revisions) != 2 {
		t.Fatalf("imported %d revisions, want 2", len(revisions))
	}
	conversations, err := e.stores.Conversations.ListByCorpus(ctx, corpusID)
	if err != nil {
		t.Fatalf("Conversations.ListByCorpus() error = %v", err)
	}
	if len(conversations) != 1 {
		t.Fatalf("imported %d conversations, want 1", len(conversations))
	}
	messages, err := e.stores.Messages.ListByConversation(ctx, conversations[0].ID)
	if err != nil {
		t.Fatalf("Messages.ListByConversation() error = %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("imported %d messages, want 2", len(messages))
	}
	votes, err := e.stores.Votes.ListByMessage(ctx, messages[1].ID)
	if err != nil {
		t.Fatalf("Votes.ListByMessage() error = %v", err)
	}
	if len(votes) != 1 || !votes[0].Upvote {
		t.Errorf("votes = %+v, want one upvote on the second message", votes)
	}
}

func TestImport_ExportRoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	man, binaries, docHash := fullManifest()

	corpusID, _, err := e.imp.Import(ctx, man, binaries, Options{ActorEmail: "importer@example.com"})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	exp := export.NewExporter(e.stores, e.blobs)
	out, outBinaries, rep, err := exp.Export(ctx, corpusID, export.Options{IncludeConversations: true})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if got := rep.SkipCount(""); got != 0 {
		t.Fatalf("Export() skipped %d entities, want 0: %+v", got, rep.Skipped)
	}

	if out.FormatVersion != archive.FormatVersionV2 {
		t.Errorf("format = %q, want %q", out.FormatVersion, archive.FormatVersionV2)
	}
	if out.Corpus.Title != man.Corpus.Title {
		t.Errorf("corpus title = %q, want %q", out.Corpus.Title, man.Corpus.Title)
	}
	if out.Corpus.CreatorEmail != "alice@example.com" {
		t.Errorf("creator email = %q, want alice@example.com", out.Corpus.CreatorEmail)
	}

	if _, ok := out.DocLabels["reviewed"]; !ok {
		t.Error("doc label lost in round trip")
	}
	if _, ok := out.TextLabels["claim"]; !ok {
		t.Error("text label lost in round trip")
	}

	if len(out.AnnotatedDocs) != 1 {
		t.Fatalf("exported %d documents, want 1", len(out.AnnotatedDocs))
	}
	for name, doc := range out.AnnotatedDocs {
		if doc.FileHash != docHash {
			t.Errorf("document hash = %q, want %q", doc.FileHash, docHash)
		}
		if doc.StructuralSetHash != docHash {
			t.Errorf("structural set hash = %q, want %q", doc.StructuralSetHash, docHash)
		}
		if len(doc.DocLabels) != 1 || doc.DocLabels[0] != "reviewed" {
			t.Errorf("doc labels = %v, want [reviewed]", doc.DocLabels)
		}
		if len(doc.Annotations) != 2 {
			t.Errorf("exported %d span annotations, want 2", len(doc.Annotations))
		}
		if string(outBinaries[name]) != docContent {
			t.Error("binary content lost in round trip")
		}
	}

	set, ok := out.StructuralSets[docHash]
	if !ok {
		t.Fatal("structural set lost in round trip")
	}
	if len(set.Annotations) != 2 || len(set.Relationships) != 1 {
		t.Errorf("structural set = %d annotations %d relationships, want 2 and 1",
			len(set.Annotations), len(set.Relationships))
	}

	gotPaths := make(map[string]bool)
	for _, f := range out.Folders {
		gotPaths[f.Path] = true
	}
	if !gotPaths["Root"] || !gotPaths["Root/Child"] {
		t.Errorf("folder paths = %v, want Root and Root/Child", gotPaths)
	}

	if len(out.VersionPaths) != 2 {
		t.Fatalf("exported %d version paths, want 2", len(out.VersionPaths))
	}
	v1, v2 := out.VersionPaths[0], out.VersionPaths[1]
	if v1.VersionNumber != 1 || v2.VersionNumber != 2 {
		t.Fatalf("version order = [%d, %d], want [1, 2]", v1.VersionNumber, v2.VersionNumber)
	}
	if v2.ParentVersionNumber == nil || *v2.ParentVersionNumber != 1 {
		t.Error("v2 lost its parent version in round trip")
	}
	if v2.FolderPath != "Root/Child" {
		t.Errorf("v2 folder path = %q, want Root/Child", v2.FolderPath)
	}
	if !v2.IsCurrent || v1.IsCurrent {
		t.Error("current flags lost in round trip")
	}

	if len(out.Relationships) != 1 || out.Relationships[0].Label != "supports" {
		t.Errorf("relationships = %+v, want one supports relationship", out.Relationships)
	}
	if !out.Relationships[0].CorpusScoped {
		t.Error("relationship lost its corpus scope in round trip")
	}

	if out.AgentConfig == nil || out.AgentConfig.CorpusAgentInstructions != "X" || out.AgentConfig.DocumentAgentInstructions != "Y" {
		t.Errorf("agent config = %+v, want (X, Y)", out.AgentConfig)
	}
	if out.Description != "# About\n" {
		t.Errorf("description = %q, want # About", out.Description)
	}
	if len(out.DescriptionRevisions) != 2 {
		t.Fatalf("exported %d revisions, want 2", len(out.DescriptionRevisions))
	}
	if out.DescriptionRevisions[0].AuthorEmail != "alice@example.com" ||
		out.DescriptionRevisions[1].AuthorEmail != "bob@example.com" {
		t.Error("revision authors lost in round trip")
	}

	if len(out.Conversations) != 1 || len(out.Messages) != 2 || len(out.MessageVotes) != 1 {
		t.Errorf("conversation sections = %d/%d/%d, want 1/2/1",
			len(out.Conversations), len(out.Messages), len(out.MessageVotes))
	}
	if out.Messages[0].CreatorEmail != "alice@example.com" {
		t.Errorf("message author = %q, want alice@example.com", out.Messages[0].CreatorEmail)
	}
}

func TestImport_StructuralSetDedup(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	man1, binaries, docHash := fullManifest()
	if _, rep1, err := e.imp.Import(ctx, man1, binaries, Options{ActorEmail: "a@example.com"}); err != nil {
		t.Fatalf("first Import() error = %v", err)
	} else if rep1.Deduplicated != 0 {
		t.Fatalf("first Import() deduplicated = %d, want 0", rep1.Deduplicated)
	}

	man2, binaries2, _ := fullManifest()
	corpus2, rep2, err := e.imp.Import(ctx, man2, binaries2, Options{ActorEmail: "a@example.com"})
	if err != nil {
		t.Fatalf("second Import() error = %v", err)
	}
	if rep2.Deduplicated != 1 {
		t.Errorf("second Import() deduplicated = %d, want 1", rep2.Deduplicated)
	}
	if got := rep2.SkipCount(report.KindStructuralSet); got != 0 {
		t.Errorf("second Import() skipped %d structural sets, want 0", got)
	}

	// The shared set was not rebuilt: still exactly two structural annotations.
	set, err := e.stores.StructuralSets.GetByHash(ctx, docHash)
	if err != nil {
		t.Fatalf("StructuralSets.GetByHash() error = %v", err)
	}
	structural, err := e.stores.Annotations.ListByStructuralSet(ctx, set.ID)
	if err != nil {
		t.Fatalf("Annotations.ListByStructuralSet() error = %v", err)
	}
	if len(structural) != 2 {
		t.Errorf("structural set holds %d annotations after dedup, want 2", len(structural))
	}

	// Both corpora's documents point at the same set.
	live, err := e.stores.VersionPaths.ListCurrentByCorpus(ctx, corpus2)
	if err != nil {
		t.Fatalf("VersionPaths.ListCurrentByCorpus() error = %v", err)
	}
	doc2, err := e.stores.Documents.Get(ctx, live[0].DocumentID)
	if err != nil {
		t.Fatalf("Documents.Get() error = %v", err)
	}
	if doc2.StructuralSetID != set.ID {
		t.Errorf("second corpus document set = %q, want shared set %q", doc2.StructuralSetID, set.ID)
	}
}

func TestImport_FolderOrderIndependence(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	man, binaries, _ := fullManifest()
	// Children listed before their parents must still wire up.
	man.Folders = []archive.FolderRecord{man.Folders[1], man.Folders[0]}

	corpusID, rep, err := e.imp.Import(ctx, man, binaries, Options{ActorEmail: "a@example.com"})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if got := rep.SkipCount(report.KindFolder); got != 0 {
		t.Fatalf("Import() skipped %d folders, want 0: %+v", got, rep.Skipped)
	}

	folders, err := e.stores.Folders.ListByCorpus(ctx, corpusID)
	if err != nil {
		t.Fatalf("Folders.ListByCorpus() error = %v", err)
	}
	if len(folders) != 2 {
		t.Fatalf("imported %d folders, want 2", len(folders))
	}
	if folders[1].ParentID != folders[0].ID {
		t.Errorf("child parent = %q, want %q", folders[1].ParentID, folders[0].ID)
	}
	if folders[1].Path != "Root/Child" {
		t.Errorf("child path = %q, want Root/Child", folders[1].Path)
	}
}

func TestImport_LegacyFormat(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	content := []byte("plain legacy text\n")
	man := &archive.Manifest{
		// No format_version tag: first-generation archive.
		Corpus:   archive.CorpusRecord{Title: "Old Corpus"},
		LabelSet: archive.LabelSetRecord{Title: "Old labels"},
		DocLabels: map[string]archive.LabelRecord{
			"reviewed": {Text: "reviewed", LabelType: storage.LabelTypeDoc},
		},
		TextLabels: map[string]archive.LabelRecord{
			"claim": {Text: "claim", LabelType: storage.LabelTypeSpan},
		},
		AnnotatedDocs: map[string]archive.DocumentRecord{
			"old_note.txt": {
				Title:    "Note",
				FileName: "note.txt",
				Content:  string(content),
				DocLabels: []string{
					"reviewed",
				},
				Annotations: []archive.AnnotationRecord{
					{ExportID: "a1", Label: "claim", RawText: "legacy claim"},
				},
			},
		},
	}
	binaries := map[string][]byte{"old_note.txt": content}

	corpusID, rep, err := e.imp.Import(ctx, man, binaries, Options{ActorEmail: "a@example.com"})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if got := rep.SkipCount(""); got != 0 {
		t.Fatalf("Import() skipped %d entities, want 0: %+v", got, rep.Skipped)
	}

	// Legacy documents get a single current root version at their filename.
	live, err := e.stores.VersionPaths.ListCurrentByCorpus(ctx, corpusID)
	if err != nil {
		t.Fatalf("VersionPaths.ListCurrentByCorpus() error = %v", err)
	}
	if len(live) != 1 {
		t.Fatalf("imported %d live versions, want 1", len(live))
	}
	vp := live[0]
	if vp.Path != "note.txt" || vp.VersionNumber != 1 || vp.ParentID != "" {
		t.Errorf("version path = (%q, %d, parent %q), want (note.txt, 1, none)",
			vp.Path, vp.VersionNumber, vp.ParentID)
	}

	doc, err := e.stores.Documents.Get(ctx, vp.DocumentID)
	if err != nil {
		t.Fatalf("Documents.Get() error = %v", err)
	}
	if doc.FileHash != parser.ContentHash(content) {
		t.Errorf("document hash = %q, want computed content hash", doc.FileHash)
	}
	if doc.StructuralSetID != "" {
		t.Errorf("legacy document set = %q, want none for heading-free content", doc.StructuralSetID)
	}

	annotations, err := e.stores.Annotations.ListByDocumentAndCorpus(ctx, doc.ID, corpusID)
	if err != nil {
		t.Fatalf("Annotations.ListByDocumentAndCorpus() error = %v", err)
	}
	if len(annotations) != 2 {
		t.Errorf("imported %d annotations, want 2 (1 label + 1 span)", len(annotations))
	}
}

func TestImport_LegacyDerivesStructuralSet(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	content := []byte("# Title\n\nintro\n\n## Alpha\n\nbody\n\n## Beta\n\nend\n")
	legacyManifest := func() (*archive.Manifest, map[string][]byte) {
		man := &archive.Manifest{
			Corpus:   archive.CorpusRecord{Title: "Old Corpus"},
			LabelSet: archive.LabelSetRecord{Title: "Old labels"},
			AnnotatedDocs: map[string]archive.DocumentRecord{
				"old_guide.md": {Title: "Guide", FileName: "guide.md", Content: string(content)},
			},
		}
		return man, map[string][]byte{"old_guide.md": content}
	}

	man, binaries := legacyManifest()
	corpusID, rep, err := e.imp.Import(ctx, man, binaries, Options{ActorEmail: "a@example.com"})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if got := rep.SkipCount(""); got != 0 {
		t.Fatalf("Import() skipped %d entities, want 0: %+v", got, rep.Skipped)
	}

	live, err := e.stores.VersionPaths.ListCurrentByCorpus(ctx, corpusID)
	if err != nil {
		t.Fatalf("VersionPaths.ListCurrentByCorpus() error = %v", err)
	}
	doc, err := e.stores.Documents.Get(ctx, live[0].DocumentID)
	if err != nil {
		t.Fatalf("Documents.Get() error = %v", err)
	}
	if doc.StructuralSetID == "" {
		t.Fatal("legacy document with headings got no structural set")
	}

	// The set is content-addressed by the binary's hash.
	set, err := e.stores.StructuralSets.GetByHash(ctx, parser.ContentHash(content))
	if err != nil {
		t.Fatalf("StructuralSets.GetByHash() error = %v", err)
	}
	if set.ID != doc.StructuralSetID {
		t.Errorf("document set = %q, want content-addressed set %q", doc.StructuralSetID, set.ID)
	}

	// Heading forest: Title with Alpha and Beta beneath it.
	annotations, err := e.stores.Annotations.ListByStructuralSet(ctx, set.ID)
	if err != nil {
		t.Fatalf("Annotations.ListByStructuralSet() error = %v", err)
	}
	if len(annotations) != 3 {
		t.Fatalf("structural set holds %d annotations, want 3", len(annotations))
	}
	byText := make(map[string]*storage.AnnotationRecord)
	for _, a := range annotations {
		if !a.IsStructural {
			t.Errorf("annotation %q not flagged structural", a.RawText)
		}
		byText[a.RawText] = a
	}
	title, alpha, beta := byText["Title"], byText["Alpha"], byText["Beta"]
	if title == nil || alpha == nil || beta == nil {
		t.Fatalf("heading texts = %v, want Title, Alpha, Beta", byText)
	}
	if alpha.ParentID != title.ID || beta.ParentID != title.ID {
		t.Error("subheadings not parented on the enclosing heading")
	}

	// Beta follows Alpha under their shared parent.
	relationships, err := e.stores.Relationships.ListByStructuralSet(ctx, set.ID)
	if err != nil {
		t.Fatalf("Relationships.ListByStructuralSet() error = %v", err)
	}
	if len(relationships) != 1 {
		t.Fatalf("structural set holds %d relationships, want 1", len(relationships))
	}
	rel := relationships[0]
	if rel.LabelText != "follows" || !rel.IsStructural {
		t.Errorf("relationship = %q structural=%v, want structural follows", rel.LabelText, rel.IsStructural)
	}
	if len(rel.SourceIDs) != 1 || rel.SourceIDs[0] != alpha.ID {
		t.Errorf("relationship sources = %v, want [%s]", rel.SourceIDs, alpha.ID)
	}
	if len(rel.TargetIDs) != 1 || rel.TargetIDs[0] != beta.ID {
		t.Errorf("relationship targets = %v, want [%s]", rel.TargetIDs, beta.ID)
	}

	// The same content in a second legacy archive reuses the set.
	man2, binaries2 := legacyManifest()
	_, rep2, err := e.imp.Import(ctx, man2, binaries2, Options{ActorEmail: "a@example.com"})
	if err != nil {
		t.Fatalf("second Import() error = %v", err)
	}
	if rep2.Deduplicated != 1 {
		t.Errorf("second Import() deduplicated = %d, want 1", rep2.Deduplicated)
	}
	again, err := e.stores.Annotations.ListByStructuralSet(ctx, set.ID)
	if err != nil {
		t.Fatalf("Annotations.ListByStructuralSet() error = %v", err)
	}
	if len(again) != 3 {
		t.Errorf("structural set holds %d annotations after dedup, want 3", len(again))
	}
}

func TestImport_MissingBinarySkipsDocument(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	otherContent := "# Other\n"
	otherHash := parser.ContentHash([]byte(otherContent))

	man, binaries, _ := fullManifest()
	man.AnnotatedDocs["doc2_other.md"] = archive.DocumentRecord{
		Title:    "Other",
		FileName: "other.md",
		FileHash: otherHash,
		Content:  otherContent,
	}
	man.VersionPaths = append(man.VersionPaths, archive.VersionPathRecord{
		DocHash: otherHash, Path: "other.md", VersionNumber: 1, IsCurrent: true,
	})
	// No binary entry for doc2.

	corpusID, rep, err := e.imp.Import(ctx, man, binaries, Options{ActorEmail: "a@example.com"})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if got := rep.SkipCount(report.KindDocument); got != 1 {
		t.Errorf("skipped %d documents, want 1", got)
	}
	if got := rep.SkipCount(report.KindVersionPath); got != 1 {
		t.Errorf("skipped %d version paths, want 1 (the one referencing the lost document)", got)
	}
	for _, s := range rep.Skipped {
		if s.Kind == report.KindDocument && s.Reason != report.ReasonReadFailure {
			t.Errorf("document skip reason = %v, want read_failure", s.Reason)
		}
	}

	// The healthy document still made it in.
	live, err := e.stores.VersionPaths.ListCurrentByCorpus(ctx, corpusID)
	if err != nil {
		t.Fatalf("VersionPaths.ListCurrentByCorpus() error = %v", err)
	}
	if len(live) != 1 {
		t.Fatalf("imported %d live versions, want 1", len(live))
	}
	if live[0].Path != "report.md" {
		t.Errorf("surviving version path = %q, want report.md", live[0].Path)
	}
}

func TestImport_SecondLiveCurrentSkipped(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// A malformed archive claiming two live currents in one lineage.
	man, binaries, _ := fullManifest()
	man.VersionPaths[0].IsCurrent = true

	corpusID, rep, err := e.imp.Import(ctx, man, binaries, Options{ActorEmail: "a@example.com"})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if got := rep.SkipCount(report.KindVersionPath); got != 1 {
		t.Errorf("skipped %d version paths, want 1 (the duplicate live current)", got)
	}
	for _, s := range rep.Skipped {
		if s.Kind == report.KindVersionPath && s.Reason != report.ReasonStoreFailure {
			t.Errorf("version path skip reason = %v, want store_failure", s.Reason)
		}
	}

	live, err := e.stores.VersionPaths.ListCurrentByCorpus(ctx, corpusID)
	if err != nil {
		t.Fatalf("VersionPaths.ListCurrentByCorpus() error = %v", err)
	}
	if len(live) != 1 {
		t.Fatalf("imported %d live currents, want exactly 1 per lineage", len(live))
	}
	// Records apply in version order, so the first claimant wins.
	if live[0].VersionNumber != 1 {
		t.Errorf("surviving live current = v%d, want v1", live[0].VersionNumber)
	}
}

func TestImport_MergeIntoExistingCorpus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	existing := &storage.CorpusRecord{Title: "Existing"}
	if err := e.stores.Corpora.Create(ctx, existing); err != nil {
		t.Fatalf("Corpora.Create() error = %v", err)
	}

	man, binaries, _ := fullManifest()
	corpusID, _, err := e.imp.Import(ctx, man, binaries, Options{
		ActorEmail:     "a@example.com",
		TargetCorpusID: existing.ID,
	})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if corpusID != existing.ID {
		t.Fatalf("Import() corpus = %q, want merge target %q", corpusID, existing.ID)
	}

	// The target kept its title but gained a label set and content.
	corpus, err := e.stores.Corpora.Get(ctx, existing.ID)
	if err != nil {
		t.Fatalf("Corpora.Get() error = %v", err)
	}
	if corpus.Title != "Existing" {
		t.Errorf("corpus title = %q, want Existing", corpus.Title)
	}
	if corpus.LabelSetID == "" {
		t.Error("merge target did not gain a label set")
	}

	live, err := e.stores.VersionPaths.ListCurrentByCorpus(ctx, existing.ID)
	if err != nil {
		t.Fatalf("VersionPaths.ListCurrentByCorpus() error = %v", err)
	}
	if len(live) != 1 {
		t.Errorf("merge target holds %d live versions, want 1", len(live))
	}

	if _, _, err := e.imp.Import(ctx, man, binaries, Options{TargetCorpusID: "missing"}); err == nil {
		t.Error("Import() accepted a missing merge target")
	}
}

func TestImport_UnresolvableRelationshipSkipped(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	man, binaries, _ := fullManifest()
	man.Relationships = append(man.Relationships, archive.RelationshipRecord{
		ExportID: "r3", Label: "supports", CorpusScoped: true,
		SourceIDs: []string{"ghost"}, TargetIDs: []string{"a2"},
	})

	corpusID, rep, err := e.imp.Import(ctx, man, binaries, Options{ActorEmail: "a@example.com"})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if got := rep.SkipCount(report.KindRelationship); got != 1 {
		t.Errorf("skipped %d relationships, want 1", got)
	}

	rels, err := e.stores.Relationships.ListByCorpus(ctx, corpusID)
	if err != nil {
		t.Fatalf("Relationships.ListByCorpus() error = %v", err)
	}
	if len(rels) != 1 {
		t.Errorf("imported %d relationships, want only the resolvable one", len(rels))
	}
}

func TestRemapTable(t *testing.T) {
	table := NewRemapTable()
	table.Add("old-1", "new-1")
	table.Add("old-2", "new-2")

	if id, ok := table.Resolve("old-1"); !ok || id != "new-1" {
		t.Errorf("Resolve(old-1) = (%q, %v), want (new-1, true)", id, ok)
	}
	if _, ok := table.Resolve("unknown"); ok {
		t.Error("Resolve(unknown) reported a hit")
	}

	resolved := table.ResolveAll([]string{"old-2", "ghost", "old-1"})
	if len(resolved) != 2 || resolved[0] != "new-2" || resolved[1] != "new-1" {
		t.Errorf("ResolveAll() = %v, want [new-2 new-1]", resolved)
	}

	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}
}
