package archive

// Format selects the import decode path for an archive.
type Format int

const (
	// FormatV1 is the legacy format: documents and labels only.
	FormatV1 Format = iota + 1
	// FormatV2 adds structural sets, folders, version history, relationships,
	// agent config, description revisions and conversations.
	FormatV2
)

// String returns the manifest tag for the format.
func (f Format) String() string {
	if f == FormatV2 {
		return FormatVersionV2
	}
	return FormatVersionV1
}

// DetectFormat inspects a decoded manifest and returns the decode path.
// Anything other than the literal "2.0" tag is treated as legacy; an absent
// tag defaults to V1.
func DetectFormat(man *Manifest) Format {
	if man != nil && man.FormatVersion == FormatVersionV2 {
		return FormatV2
	}
	return FormatV1
}
