// Package report carries structured diagnostics for export and import runs.
// Recoverable per-entity failures are recorded here instead of living only
// in log lines, so callers and tests can assert on what was skipped and why.
package report

import "fmt"

// Kind identifies the entity family a diagnostic refers to.
type Kind string

// Entity kinds.
const (
	KindDocument      Kind = "document"
	KindAnnotation    Kind = "annotation"
	KindStructuralSet Kind = "structural_set"
	KindFolder        Kind = "folder"
	KindVersionPath   Kind = "version_path"
	KindRelationship  Kind = "relationship"
	KindRevision      Kind = "revision"
	KindConversation  Kind = "conversation"
	KindMessage       Kind = "message"
	KindVote          Kind = "vote"
	KindLabel         Kind = "label"
)

// Reason is a closed enumeration of why an entity was skipped.
type Reason int

const (
	// ReasonStoreFailure: the backing store rejected the entity.
	ReasonStoreFailure Reason = iota + 1
	// ReasonReadFailure: the entity's binary content could not be read.
	ReasonReadFailure
	// ReasonMissingLabel: the entity references a label that does not exist.
	ReasonMissingLabel
	// ReasonMissingReference: the entity references an id absent from the
	// current remap table.
	ReasonMissingReference
	// ReasonBadTimestamp: a recorded timestamp could not be parsed.
	ReasonBadTimestamp
)

// String returns a stable name for the reason.
func (r Reason) String() string {
	switch r {
	case ReasonStoreFailure:
		return "store_failure"
	case ReasonReadFailure:
		return "read_failure"
	case ReasonMissingLabel:
		return "missing_label"
	case ReasonMissingReference:
		return "missing_reference"
	case ReasonBadTimestamp:
		return "bad_timestamp"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// Skipped records one omitted entity.
type Skipped struct {
	Kind   Kind
	ID     string // Entity or export-local identifier
	Reason Reason
	Detail string
}

// Report accumulates diagnostics over one export or import run.
type Report struct {
	Skipped []Skipped
	// Deduplicated counts structural sets reused instead of recreated.
	// A dedup hit is a successful no-op, not an error.
	Deduplicated int
}

// New returns an empty report.
func New() *Report {
	return &Report{}
}

// Skip records an omitted entity.
func (r *Report) Skip(kind Kind, id string, reason Reason, detail string) {
	r.Skipped = append(r.Skipped, Skipped{Kind: kind, ID: id, Reason: reason, Detail: detail})
}

// SkipCount returns the number of skipped entities of a kind.
// The empty kind counts everything.
func (r *Report) SkipCount(kind Kind) int {
	if kind == "" {
		return len(r.Skipped)
	}
	n := 0
	for _, s := range r.Skipped {
		if s.Kind == kind {
			n++
		}
	}
	return n
}
