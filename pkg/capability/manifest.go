package capability

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jverdu/emissary/pkg/core"
)

// Manifest is the YAML override format for role capabilities. Roles not
// present in the manifest keep their built-in entry; empty fields inside
// a role keep the built-in value for that field.
//
//	roles:
//	  research:
//	    template: |
//	      You are ...
//	    tools: [web_search]
type Manifest struct {
	Roles map[string]ManifestRole `yaml:"roles"`
}

// ManifestRole overrides one role's template and/or tool allowlist.
type ManifestRole struct {
	Template string   `yaml:"template"`
	Tools    []string `yaml:"tools"`
}

// Load reads a manifest file and overlays it on the default table.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read capability manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse capability manifest: %w", err)
	}
	return Default().Apply(m)
}

// Apply overlays manifest overrides on the table, returning a new table.
func (t *Table) Apply(m Manifest) (*Table, error) {
	merged := make([]Entry, 0, len(t.entries))
	for _, role := range core.Roles() {
		merged = append(merged, t.entries[role])
	}

	for name, override := range m.Roles {
		role, err := core.ParseRole(name)
		if err != nil {
			return nil, fmt.Errorf("capability manifest: %w", err)
		}
		for i := range merged {
			if merged[i].Role != role {
				continue
			}
			if override.Template != "" {
				merged[i].Template = override.Template
			}
			if override.Tools != nil {
				merged[i].AllowedTools = append([]string(nil), override.Tools...)
			}
		}
	}
	return New(merged), nil
}
