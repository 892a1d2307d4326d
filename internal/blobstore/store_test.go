package blobstore

import (
	"errors"
	"io"
	"os"
	"testing"
)

func TestStore_SaveAndRead(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	content := []byte("hello world")
	if err := store.Save("documents/abc/file.md", content); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Read("documents/abc/file.md")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != "hello world" {
		t.Errorf("Read() = %q, want %q", got, content)
	}

	// Overwrite under the same key.
	if err := store.Save("documents/abc/file.md", []byte("v2")); err != nil {
		t.Fatalf("Save() overwrite error = %v", err)
	}
	got, err = store.Read("documents/abc/file.md")
	if err != nil {
		t.Fatalf("Read() after overwrite error = %v", err)
	}
	if string(got) != "v2" {
		t.Errorf("Read() after overwrite = %q, want v2", got)
	}
}

func TestStore_Open(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if err := store.Save("exports/a.zip", []byte("zipzip")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	r, err := store.Open("exports/a.zip")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() {
		_ = r.Close()
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "zipzip" {
		t.Errorf("Open() content = %q, want zipzip", data)
	}
}

func TestStore_ReadMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	if _, err := store.Read("nope/missing.bin"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_RejectsBadKeys(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"dot", "."},
		{"slash only", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.Save(tt.key, []byte("x")); err == nil {
				t.Errorf("Save(%q) accepted an invalid key", tt.key)
			}
		})
	}
}

func TestStore_ConfinesTraversalKeys(t *testing.T) {
	parent := t.TempDir()
	store, err := NewStore(parent + "/blobs")
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	// Leading .. segments are normalized away, never escaping the root.
	if err := store.Save("../escape.txt", []byte("x")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(parent + "/escape.txt"); !os.IsNotExist(err) {
		t.Error("Save() wrote outside the store root")
	}
	if _, err := store.Read("escape.txt"); err != nil {
		t.Errorf("Read() normalized key error = %v", err)
	}
}
