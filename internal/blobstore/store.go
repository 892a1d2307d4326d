// Package blobstore provides local-filesystem binary storage for document
// originals and produced archives, addressed by store-relative keys.
package blobstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no blob exists under a key.
var ErrNotFound = errors.New("blob not found")

// Store reads and writes binary blobs below a single root directory.
type Store struct {
	root string
}

// NewStore creates a blob store rooted at the given directory, creating it
// if necessary.
func NewStore(root string) (*Store, error) {
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob root: %w", err)
	}
	return &Store{root: root}, nil
}

// Save writes the blob under the given key, creating parent directories as
// needed. An existing blob under the same key is overwritten.
func (s *Store) Save(key string, data []byte) error {
	abs, err := s.absPath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return fmt.Errorf("failed to create blob directory: %w", err)
	}
	if err := os.WriteFile(abs, data, 0644); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	return nil
}

// Open returns a reader for the blob under the given key.
// Returns ErrNotFound if no blob exists.
func (s *Store) Open(key string) (io.ReadCloser, error) {
	abs, err := s.absPath(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(abs)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open blob %s: %w", key, err)
	}
	return f, nil
}

// Read returns the full content of the blob under the given key.
// Returns ErrNotFound if no blob exists.
func (s *Store) Read(key string) ([]byte, error) {
	r, err := s.Open(key)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Close()
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return data, nil
}

// absPath resolves a key to an absolute path, rejecting keys that would
// escape the store root.
func (s *Store) absPath(key string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	abs := filepath.Join(s.root, filepath.FromSlash(cleaned))
	if !strings.HasPrefix(abs, s.root+string(os.PathSeparator)) && abs != s.root {
		return "", fmt.Errorf("invalid blob key: %s", key)
	}
	return abs, nil
}

func cleanKey(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("empty blob key")
	}

	cleaned := path.Clean("/" + trimmed)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", errors.New("invalid blob key")
	}

	for _, segment := range strings.Split(cleaned, "/") {
		if segment == ".." {
			return "", errors.New("path traversal detected")
		}
	}

	return cleaned, nil
}
