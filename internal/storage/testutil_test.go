package storage

import (
	"context"
	"database/sql"
	"testing"
)

// newTestDB opens a migrated database under a per-test temp directory.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := New(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

// seedCorpus creates a corpus with its own label set and returns both records.
func seedCorpus(t *testing.T, db *sql.DB, title string) (*CorpusRecord, *LabelSetRecord) {
	t.Helper()
	ctx := context.Background()

	labelSet := &LabelSetRecord{Title: title + " labels"}
	if err := NewLabelSetRepo(db).Create(ctx, labelSet); err != nil {
		t.Fatalf("LabelSetRepo.Create() error = %v", err)
	}

	corpus := &CorpusRecord{Title: title, LabelSetID: labelSet.ID}
	if err := NewCorpusRepo(db).Create(ctx, corpus); err != nil {
		t.Fatalf("CorpusRepo.Create() error = %v", err)
	}

	return corpus, labelSet
}

// seedDocument creates a bare document record.
func seedDocument(t *testing.T, db *sql.DB, fileName, fileHash string) *DocumentRecord {
	t.Helper()

	doc := &DocumentRecord{
		Title:    fileName,
		FileName: fileName,
		FileKey:  "documents/test/" + fileName,
		FileHash: fileHash,
	}
	if err := NewDocumentRepo(db).Create(context.Background(), doc); err != nil {
		t.Fatalf("DocumentRepo.Create() error = %v", err)
	}
	return doc
}

// seedLabel creates one label inside a label set.
func seedLabel(t *testing.T, db *sql.DB, labelSetID, text, labelType string) *LabelRecord {
	t.Helper()

	label, err := NewLabelRepo(db).GetOrCreate(context.Background(), &LabelRecord{
		LabelSetID: labelSetID,
		Text:       text,
		LabelType:  labelType,
	})
	if err != nil {
		t.Fatalf("LabelRepo.GetOrCreate() error = %v", err)
	}
	return label
}
