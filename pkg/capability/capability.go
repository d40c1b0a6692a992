// Package capability defines the static mapping from agent role to
// instruction template and allowed tool names. The table is built once at
// process start, is immutable afterwards, and is shared by reference
// across concurrent runs.
package capability

import "github.com/jverdu/emissary/pkg/core"

// Entry binds one role to its instruction template and tool allowlist.
type Entry struct {
	Role         core.Role
	Template     string
	AllowedTools []string
}

// Table is the capability table. Lookups are pure; a role outside the
// closed enumeration never reaches this package (validated upstream).
type Table struct {
	entries map[core.Role]Entry
}

// Default returns the built-in capability table: research may search the
// web, document may query the document index, analyst gets no tools, and
// general gets everything.
func Default() *Table {
	return New([]Entry{
		{Role: core.RoleResearch, Template: researchTemplate, AllowedTools: []string{"web_search"}},
		{Role: core.RoleDocument, Template: documentTemplate, AllowedTools: []string{"rag"}},
		{Role: core.RoleAnalyst, Template: analystTemplate},
		{Role: core.RoleGeneral, Template: generalTemplate, AllowedTools: []string{"web_search", "rag"}},
	})
}

// New builds a table from explicit entries.
func New(entries []Entry) *Table {
	t := &Table{entries: make(map[core.Role]Entry, len(entries))}
	for _, e := range entries {
		t.entries[e.Role] = e
	}
	return t
}

// EntryFor returns the full entry for the role.
func (t *Table) EntryFor(role core.Role) (Entry, bool) {
	e, ok := t.entries[role]
	if !ok {
		return Entry{}, false
	}
	e.AllowedTools = append([]string(nil), e.AllowedTools...)
	return e, true
}

// ToolsFor returns the allowed tool names for the role. Names that are
// not registered soft-fail at filter time, not here.
func (t *Table) ToolsFor(role core.Role) []string {
	return append([]string(nil), t.entries[role].AllowedTools...)
}

// TemplateFor returns the instruction template for the role.
func (t *Table) TemplateFor(role core.Role) string {
	return t.entries[role].Template
}
