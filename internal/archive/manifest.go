// Package archive defines the portable corpus archive: a zip container with
// one JSON manifest plus one binary entry per exported document.
package archive

// Format version tags carried in the manifest. A missing tag means V1.
const (
	FormatVersionV1 = "1.0"
	FormatVersionV2 = "2.0"
)

// Manifest is the root serialized document of an archive.
// All identifiers inside it are export-local: they cross-reference other
// manifest records and have no meaning outside the archive.
type Manifest struct {
	FormatVersion string `json:"format_version,omitempty"`

	Corpus   CorpusRecord   `json:"corpus_record"`
	LabelSet LabelSetRecord `json:"label_set_record"`

	// Label mappings keyed by label name.
	DocLabels  map[string]LabelRecord `json:"doc_labels"`
	TextLabels map[string]LabelRecord `json:"text_labels"`

	// AnnotatedDocs maps archive-relative binary names to document records.
	AnnotatedDocs map[string]DocumentRecord `json:"annotated_docs"`

	// V2-only sections.
	StructuralSets       map[string]StructuralSetRecord `json:"structural_sets,omitempty"` // keyed by content hash
	Folders              []FolderRecord                 `json:"folders,omitempty"`
	VersionPaths         []VersionPathRecord            `json:"version_paths,omitempty"`
	Relationships        []RelationshipRecord           `json:"relationships,omitempty"`
	AgentConfig          *AgentConfigRecord             `json:"agent_config,omitempty"`
	Description          string                         `json:"description,omitempty"`
	DescriptionRevisions []RevisionRecord               `json:"description_revisions,omitempty"`
	Conversations        []ConversationRecord           `json:"conversations,omitempty"`
	Messages             []MessageRecord                `json:"messages,omitempty"`
	MessageVotes         []VoteRecord                   `json:"message_votes,omitempty"`
}

// CorpusRecord is the flat attribute dump of the aggregate root.
type CorpusRecord struct {
	ID           string `json:"id,omitempty"`
	Title        string `json:"title"`
	CreatorEmail string `json:"creator_email,omitempty"`
}

// LabelSetRecord is the flat attribute dump of the labeling scheme.
type LabelSetRecord struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// LabelRecord holds one label's attributes.
type LabelRecord struct {
	ID          string `json:"id,omitempty"`
	Text        string `json:"text"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
	LabelType   string `json:"label_type"`
}

// DocumentRecord is one exported document: text content, span annotations
// and label references. The binary travels as a sibling zip entry named by
// the AnnotatedDocs key.
type DocumentRecord struct {
	Title             string             `json:"title"`
	FileName          string             `json:"file_name"`
	FileHash          string             `json:"file_hash"`
	Content           string             `json:"content"`
	DocLabels         []string           `json:"doc_labels,omitempty"`
	Annotations       []AnnotationRecord `json:"annotations,omitempty"`
	StructuralSetHash string             `json:"structural_set_hash,omitempty"`
}

// AnnotationRecord is one flattened annotation. ExportID cross-references
// relationship records and parent links within the same archive.
type AnnotationRecord struct {
	ExportID   string `json:"export_id"`
	Label      string `json:"label"`
	Page       int    `json:"page,omitempty"`
	RawText    string `json:"raw_text,omitempty"`
	BoundsJSON string `json:"bounds_json,omitempty"`
	ParentID   string `json:"parent_id,omitempty"` // Export-local ID of the parent annotation
	Structural bool   `json:"structural,omitempty"`
}

// StructuralSetRecord bundles one content hash's parse-derived annotation
// forest and internal relationships.
type StructuralSetRecord struct {
	FileHash      string               `json:"file_hash"`
	Annotations   []AnnotationRecord   `json:"annotations"`
	Relationships []RelationshipRecord `json:"relationships,omitempty"`
}

// FolderRecord is one node of the corpus directory tree, flat with a parent
// reference. Path is a snapshot of the slash-joined ancestor names exported
// for round-trip verification alongside the relational parent link.
type FolderRecord struct {
	ExportID    string   `json:"export_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Color       string   `json:"color,omitempty"`
	Icon        string   `json:"icon,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	IsVisible   bool     `json:"is_visible"`
	ParentID    string   `json:"parent_id,omitempty"` // Export-local ID of the parent folder
	Path        string   `json:"path"`
}

// VersionPathRecord is one node of a document's version history tree.
// The document is referenced by content hash, the folder by materialized
// path, and the parent version by (path, parent_version_number).
type VersionPathRecord struct {
	DocHash             string `json:"doc_hash"`
	FolderPath          string `json:"folder_path,omitempty"`
	Path                string `json:"path"`
	VersionNumber       int    `json:"version_number"`
	ParentVersionNumber *int   `json:"parent_version_number,omitempty"`
	IsCurrent           bool   `json:"is_current"`
	IsDeleted           bool   `json:"is_deleted"`
	CreatedAt           string `json:"created_at,omitempty"` // RFC3339
}

// RelationshipRecord is a labeled directed edge set between two groups of
// annotations, referenced by their export-local IDs.
type RelationshipRecord struct {
	ExportID     string   `json:"export_id"`
	Label        string   `json:"label"`
	Structural   bool     `json:"structural,omitempty"`
	CorpusScoped bool     `json:"corpus_scoped,omitempty"`
	SourceIDs    []string `json:"source_ids"`
	TargetIDs    []string `json:"target_ids"`
}

// AgentConfigRecord carries the aggregate root's agent instruction fields.
type AgentConfigRecord struct {
	CorpusAgentInstructions   string `json:"corpus_agent_instructions,omitempty"`
	DocumentAgentInstructions string `json:"document_agent_instructions,omitempty"`
}

// RevisionRecord is one entry of the description edit history.
type RevisionRecord struct {
	Version     int    `json:"version"`
	Content     string `json:"content"`
	AuthorEmail string `json:"author_email,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"` // RFC3339
}

// ConversationRecord is one exported chat thread.
type ConversationRecord struct {
	ExportID     string `json:"export_id"`
	Title        string `json:"title,omitempty"`
	CreatorEmail string `json:"creator_email,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"` // RFC3339
}

// MessageRecord is one exported message, referencing its conversation by
// export-local ID.
type MessageRecord struct {
	ExportID       string `json:"export_id"`
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
	MsgType        string `json:"msg_type,omitempty"`
	CreatorEmail   string `json:"creator_email,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"` // RFC3339
}

// VoteRecord is one exported message vote, referencing its message by
// export-local ID.
type VoteRecord struct {
	MessageID    string `json:"message_id"`
	Upvote       bool   `json:"upvote"`
	CreatorEmail string `json:"creator_email,omitempty"`
}
