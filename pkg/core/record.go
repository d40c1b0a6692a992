package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ToolCallRecord is one entry in a run's append-only call log. It is
// created before the tool is invoked, so a record exists even when the
// invocation later fails.
type ToolCallRecord struct {
	Tool    string
	Args    map[string]string
	Ordinal int
}

// NewToolCallRecord builds a record for a single-query invocation.
func NewToolCallRecord(tool, query string, ordinal int) ToolCallRecord {
	return ToolCallRecord{
		Tool:    tool,
		Args:    map[string]string{"query": query},
		Ordinal: ordinal,
	}
}

// Format renders the record as "<name>({key: value, ...})" with keys in
// sorted order so the output is deterministic.
func (r ToolCallRecord) Format() string {
	keys := make([]string, 0, len(r.Args))
	for k := range r.Args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(r.Tool)
	b.WriteString("({")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(r.Args[k])
	}
	b.WriteString("})")
	return b.String()
}

// MarshalJSON writes the record in its wire form, the formatted string.
func (r ToolCallRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Format())
}

// UnmarshalJSON parses the formatted wire string back into a record. The
// ordinal is not part of the wire form; RunResult restores it from the
// list position.
func (r *ToolCallRecord) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := parseRecord(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func parseRecord(s string) (ToolCallRecord, error) {
	open := strings.Index(s, "({")
	if open < 0 || !strings.HasSuffix(s, "})") {
		return ToolCallRecord{}, fmt.Errorf("malformed tool call record %q", s)
	}
	rec := ToolCallRecord{
		Tool: s[:open],
		Args: make(map[string]string),
	}
	inner := s[open+2 : len(s)-2]
	if inner == "" {
		return rec, nil
	}
	for _, pair := range strings.Split(inner, ", ") {
		key, value, ok := strings.Cut(pair, ": ")
		if !ok {
			return ToolCallRecord{}, fmt.Errorf("malformed tool call argument %q", pair)
		}
		rec.Args[key] = value
	}
	return rec, nil
}
