// Package importer reconstructs a corpus aggregate from a portable archive,
// assigning fresh identifiers and rewiring every cross-reference through
// scoped remap tables.
package importer

// RemapTable translates export-local identifiers to freshly assigned
// database identifiers. Tables are scoped: each structural set gets its own
// table, and document annotations share one table per import run, so an id
// from one scope can never resolve inside another.
type RemapTable struct {
	ids map[string]string
}

// NewRemapTable returns an empty table.
func NewRemapTable() *RemapTable {
	return &RemapTable{ids: make(map[string]string)}
}

// Add records the translation of one export-local id.
func (t *RemapTable) Add(exportID, newID string) {
	t.ids[exportID] = newID
}

// Resolve translates one export-local id. The second return value reports
// whether the id is known to this table.
func (t *RemapTable) Resolve(exportID string) (string, bool) {
	id, ok := t.ids[exportID]
	return id, ok
}

// ResolveAll translates a list of export-local ids, dropping unknown ones.
func (t *RemapTable) ResolveAll(exportIDs []string) []string {
	var resolved []string
	for _, exportID := range exportIDs {
		if id, ok := t.ids[exportID]; ok {
			resolved = append(resolved, id)
		}
	}
	return resolved
}

// Len returns the number of known translations.
func (t *RemapTable) Len() int {
	return len(t.ids)
}
