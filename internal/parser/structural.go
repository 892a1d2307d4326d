// Package parser derives the structural annotation layout of a document's
// text: a forest of heading annotations plus sibling-order relations, keyed
// by the content hash of the raw bytes.
package parser

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Labels assigned to structural annotations and relations.
const (
	LabelHeading = "heading"
	LabelFollows = "follows"
)

// Annotation is one parse-derived structural annotation. LocalID is only
// meaningful within the Structure that owns it.
type Annotation struct {
	LocalID  string
	Label    string
	Level    int // Heading level, 1-6
	Text     string
	ParentID string // LocalID of the enclosing heading, empty at top level
}

// Relation is a directed structural edge between annotation groups.
type Relation struct {
	Label     string
	SourceIDs []string // LocalIDs
	TargetIDs []string
}

// Structure is the parse result for one document's content.
type Structure struct {
	FileHash    string
	Annotations []Annotation
	Relations   []Relation
}

// ContentHash returns the SHA256 hex fingerprint of the raw content.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return fmt.Sprintf("%x", sum)
}

// StructuralParser parses markdown-ish text content using goldmark AST parsing.
type StructuralParser struct {
	parser goldmark.Markdown
}

// NewStructuralParser creates a new structural parser.
func NewStructuralParser() *StructuralParser {
	return &StructuralParser{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// Parse walks the content's AST and returns its heading forest: one
// annotation per heading, parented on the nearest enclosing heading of a
// lower level, plus a "follows" relation between consecutive siblings.
func (p *StructuralParser) Parse(content []byte) (*Structure, error) {
	s := &Structure{FileHash: ContentHash(content)}
	if len(content) == 0 {
		return s, nil
	}

	reader := text.NewReader(content)
	doc := p.parser.Parser().Parse(reader)

	// Stack of open headings, one per level currently enclosing the walk.
	type openHeading struct {
		localID string
		level   int
	}
	var stack []openHeading
	seq := 0

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		// Pop headings of equal or deeper level; the survivor is the parent.
		for len(stack) > 0 && stack[len(stack)-1].level >= heading.Level {
			stack = stack[:len(stack)-1]
		}

		parentID := ""
		if len(stack) > 0 {
			parentID = stack[len(stack)-1].localID
		}

		seq++
		a := Annotation{
			LocalID:  fmt.Sprintf("h%d", seq),
			Label:    LabelHeading,
			Level:    heading.Level,
			Text:     extractText(heading, content),
			ParentID: parentID,
		}
		s.Annotations = append(s.Annotations, a)
		stack = append(stack, openHeading{localID: a.LocalID, level: heading.Level})

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk content: %w", err)
	}

	s.Relations = siblingRelations(s.Annotations)
	return s, nil
}

// siblingRelations emits one "follows" relation per consecutive pair of
// annotations sharing a parent.
func siblingRelations(annotations []Annotation) []Relation {
	lastByParent := make(map[string]string)
	var relations []Relation

	for _, a := range annotations {
		if prev, ok := lastByParent[a.ParentID]; ok {
			relations = append(relations, Relation{
				Label:     LabelFollows,
				SourceIDs: []string{prev},
				TargetIDs: []string{a.LocalID},
			})
		}
		lastByParent[a.ParentID] = a.LocalID
	}

	return relations
}

// extractText extracts text content from a node and its children.
func extractText(n ast.Node, content []byte) string {
	var b strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}
