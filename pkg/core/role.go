package core

import (
	"fmt"
	"strings"
)

// Role is the closed set of sub-agent specializations. It decides which
// tools an agent may use and which instruction template it receives.
type Role string

const (
	// RoleResearch gathers current information from the web.
	RoleResearch Role = "research"
	// RoleDocument answers from the local document collection.
	RoleDocument Role = "document"
	// RoleAnalyst reasons over caller-supplied context only, no tools.
	RoleAnalyst Role = "analyst"
	// RoleGeneral may use every registered tool.
	RoleGeneral Role = "general"
)

// Roles returns all valid roles in declaration order.
func Roles() []Role {
	return []Role{RoleResearch, RoleDocument, RoleAnalyst, RoleGeneral}
}

// ParseRole matches the input against the closed enumeration,
// case-insensitively. The raw input is preserved in the error so callers
// can echo it back.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleResearch:
		return RoleResearch, nil
	case RoleDocument:
		return RoleDocument, nil
	case RoleAnalyst:
		return RoleAnalyst, nil
	case RoleGeneral:
		return RoleGeneral, nil
	}
	return "", fmt.Errorf("unknown agent type: %s", s)
}

func (r Role) String() string { return string(r) }
