package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// ManifestName is the archive entry holding the JSON manifest.
const ManifestName = "data.json"

// Write assembles a zip archive from a manifest and the document binaries,
// writing it to w. The manifest entry is UTF-8 JSON with 2-space indentation
// and a trailing newline; binaries are written under their map keys.
func Write(w io.Writer, man *Manifest, binaries map[string][]byte) error {
	zw := zip.NewWriter(w)

	data, err := EncodeManifest(man)
	if err != nil {
		return err
	}

	entry, err := zw.Create(ManifestName)
	if err != nil {
		return fmt.Errorf("failed to create manifest entry: %w", err)
	}
	if _, err := entry.Write(data); err != nil {
		return fmt.Errorf("failed to write manifest entry: %w", err)
	}

	// Deterministic entry order keeps archives stable across runs.
	names := make([]string, 0, len(binaries))
	for name := range binaries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("failed to create entry %s: %w", name, err)
		}
		if _, err := entry.Write(binaries[name]); err != nil {
			return fmt.Errorf("failed to write entry %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

// WriteBytes is Write into a fresh byte slice.
func WriteBytes(man *Manifest, binaries map[string][]byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, man, binaries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Read opens a zip archive and returns its decoded manifest plus every
// binary entry keyed by name.
func Read(data []byte) (*Manifest, map[string][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open archive: %w", err)
	}

	var man *Manifest
	binaries := make(map[string][]byte)

	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open entry %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read entry %s: %w", f.Name, err)
		}

		if f.Name == ManifestName {
			var m Manifest
			if err := json.Unmarshal(content, &m); err != nil {
				return nil, nil, fmt.Errorf("failed to decode manifest: %w", err)
			}
			man = &m
			continue
		}
		binaries[f.Name] = content
	}

	if man == nil {
		return nil, nil, fmt.Errorf("archive has no %s entry", ManifestName)
	}
	return man, binaries, nil
}

// EncodeManifest serializes a manifest the way archives carry it:
// 2-space indentation and a trailing newline.
func EncodeManifest(man *Manifest) ([]byte, error) {
	data, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return append(data, '\n'), nil
}
