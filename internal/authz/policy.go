package authz

import (
	"encoding/json"
	"fmt"
	"os"

	"recordsapi/internal/model"
)

// Wildcard grants a role access to every document category.
const Wildcard = "*"

// Relationship-scoped categories. Documents of these categories that carry
// the matching pointer require an assignment row for manager access.
const (
	CategoryStaff  = "STAFF"
	CategoryClient = "CLIENT"
)

// Policy maps a role to its set of allowed document categories.
// It is pure data: policy evolves independently of code and can be swapped
// out at startup via LoadPolicyFile.
type Policy map[string][]string

// DefaultPolicy returns the built-in role policy table.
func DefaultPolicy() Policy {
	return Policy{
		model.RoleDirector: {Wildcard},
		model.RoleManager: {
			"STAFF",
			"CLIENT",
			"GENERAL",
			"SUPPLIER",
			"COMPANY_POLICY",
			"COMPANY_LEGAL",
			"COMPANY_FINANCE",
			"COMPANY_HR",
			"COMPANY_COMPLIANCE",
			"CONTRACT",
			"VENDOR",
			"BOARD",
			"TAX",
		},
		model.RoleStaff: {"GENERAL", "COMPANY_POLICY"},
	}
}

// LoadPolicyFile reads a role-to-category policy from a JSON file of the form
// {"ROLE": ["CATEGORY", ...], ...}. An empty path returns the default table.
func LoadPolicyFile(path string) (Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	var p Policy
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("policy file %s defines no roles", path)
	}
	return p, nil
}

// allows reports whether the role's category set contains the category.
func (p Policy) allows(role, category string) bool {
	for _, c := range p[role] {
		if c == category {
			return true
		}
	}
	return false
}

// hasWildcard reports whether the role's category set contains the wildcard.
func (p Policy) hasWildcard(role string) bool {
	return p.allows(role, Wildcard)
}
