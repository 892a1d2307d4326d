package storage

import "time"

// UserRecord represents a platform user in the database.
type UserRecord struct {
	ID        string // UUID
	Email     string
	Name      string
	CreatedAt time.Time
}

// LabelSetRecord represents a labeling scheme owned by a corpus.
type LabelSetRecord struct {
	ID          string // UUID
	Title       string
	Description string
}

// Label types distinguish document-level from span-level labels.
const (
	LabelTypeDoc          = "doc"
	LabelTypeSpan         = "span"
	LabelTypeRelationship = "relationship"
)

// LabelRecord represents a single label inside a label set.
type LabelRecord struct {
	ID          string // UUID
	LabelSetID  string
	Text        string
	Color       string
	Description string
	LabelType   string // LabelTypeDoc or LabelTypeSpan
}

// CorpusRecord represents the aggregate root owning documents, folders,
// version paths and conversations.
type CorpusRecord struct {
	ID                        string // UUID
	Title                     string
	LabelSetID                string
	CreatorID                 string
	DescriptionMD             string // Current markdown description content
	CorpusAgentInstructions   string
	DocumentAgentInstructions string
	CreatedAt                 time.Time
}

// StructuralSetRecord represents a content-addressed bundle of parse-derived
// annotations shared by all documents with the same content hash.
type StructuralSetRecord struct {
	ID       string // UUID
	FileHash string // SHA256 hex string, unique
}

// DocumentRecord represents a document in the database.
type DocumentRecord struct {
	ID              string // UUID
	Title           string
	FileName        string // Original filename
	FileKey         string // Blob store key of the original binary
	FileHash        string // SHA256 hex string of binary content
	TextContent     string // Extracted plain text
	StructuralSetID string // Optional reference to a shared structural set
	BackendLock     bool   // True while a writer is still assembling the document
	CreatorID       string
	CreatedAt       time.Time
}

// AnnotationRecord represents one annotation. Structural annotations belong
// to a structural set; user annotations belong to a document within a corpus.
type AnnotationRecord struct {
	ID              string // UUID
	DocumentID      string
	CorpusID        string
	StructuralSetID string
	LabelID         string
	ParentID        string // Optional parent annotation within the same forest
	Page            int
	RawText         string
	BoundsJSON      string // Token/layout geometry, opaque JSON
	IsStructural    bool
	CreatorID       string

	// LabelText and LabelType are populated by queries that join labels.
	LabelText string
	LabelType string
}

// FolderRecord represents a named node in a per-corpus directory tree.
type FolderRecord struct {
	ID          string // UUID
	CorpusID    string
	Name        string
	Description string
	Color       string
	Icon        string
	TagsJSON    string // JSON array of string tags
	IsVisible   bool
	ParentID    string // Empty for root folders
	Path        string // Slash-joined ancestor names, derived from the parent chain
}

// VersionPathRecord represents one node in a document's per-corpus version
// history tree.
type VersionPathRecord struct {
	ID            string // UUID
	CorpusID      string
	DocumentID    string
	FolderID      string // Optional target folder
	Path          string // Logical path string
	VersionNumber int
	ParentID      string // Optional parent version
	IsCurrent     bool
	IsDeleted     bool
	CreatedAt     time.Time
}

// RelationshipRecord represents a labeled directed edge set between two
// groups of annotations.
type RelationshipRecord struct {
	ID              string // UUID
	CorpusID        string // Set when scoped to a whole corpus
	DocumentID      string // Set when scoped to a single document
	StructuralSetID string // Set for parse-derived relationships
	LabelID         string
	IsStructural    bool

	SourceIDs []string // Annotation IDs, populated by queries that join the edge tables
	TargetIDs []string

	// LabelText is populated by queries that join labels.
	LabelText string
}

// RevisionRecord represents one entry in a corpus description's edit history.
type RevisionRecord struct {
	ID        string // UUID
	CorpusID  string
	Version   int
	Content   string
	AuthorID  string
	CreatedAt time.Time
}

// ConversationRecord represents an agent chat thread attached to a corpus.
type ConversationRecord struct {
	ID        string // UUID
	CorpusID  string
	Title     string
	CreatorID string
	CreatedAt time.Time
}

// MessageRecord represents one message inside a conversation.
type MessageRecord struct {
	ID             string // UUID
	ConversationID string
	Content        string
	MsgType        string
	CreatorID      string
	CreatedAt      time.Time
}

// VoteRecord represents an up/down vote on a message.
type VoteRecord struct {
	ID        string // UUID
	MessageID string
	Upvote    bool
	CreatorID string
}

// Job kinds.
const (
	JobKindExport = "export"
	JobKindImport = "import"
)

// JobRecord is the export/import tracking record. Completion is signalled by
// stamping Finished; failure by Error. BackendLock marks work in progress.
type JobRecord struct {
	ID                   string // UUID
	CorpusID             string
	Kind                 string // JobKindExport or JobKindImport
	FileKey              string // Blob store key of the archive
	IncludeConversations bool
	Finished             *time.Time
	Error                bool
	BackendLock          bool
	CreatedAt            time.Time
}
