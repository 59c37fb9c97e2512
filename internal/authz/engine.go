package authz

// Package authz decides per request whether a principal may read a document,
// combining the role policy table with the externally maintained relationship
// assignments and an unconditional owner override.

import (
	"context"
	"database/sql"
	"errors"

	"recordsapi/internal/model"
	"recordsapi/internal/repository"
)

// Engine is the relationship-based authorization engine.
type Engine struct {
	policy      Policy
	docs        repository.DocumentRepository
	assignments repository.AssignmentRepository
}

// NewEngine constructs an Engine over the given policy and collaborators.
func NewEngine(policy Policy, docs repository.DocumentRepository, assignments repository.AssignmentRepository) *Engine {
	return &Engine{policy: policy, docs: docs, assignments: assignments}
}

// CanRead decides read-eligibility for (principal, document, category).
//
// The checks run in a fixed order, short-circuiting on the first decision:
// missing document, owner override, wildcard, category membership, then the
// relationship lookup for pointer-scoped categories. Ownership dominates
// category policy so early, unclassified documents stay readable by their
// uploader even after a stricter policy change. A missing document yields
// false, identical to not-authorized, so existence is never leaked.
//
// docType is the caller-supplied category; when empty the stored one is used.
func (e *Engine) CanRead(ctx context.Context, userID, role, docUID, docType string) (bool, error) {
	doc, err := e.docs.FindByUID(ctx, docUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	if doc.CreatedBy == userID {
		return true, nil
	}

	effectiveType := docType
	if effectiveType == "" {
		effectiveType = doc.DocType
	}

	if e.policy.hasWildcard(role) {
		return true, nil
	}
	if !e.policy.allows(role, effectiveType) {
		return false, nil
	}

	if role == model.RoleManager {
		if effectiveType == CategoryStaff && doc.StaffID != "" {
			return e.assignments.ManagerHasStaff(ctx, userID, doc.StaffID)
		}
		if effectiveType == CategoryClient && doc.ClientID != "" {
			return e.assignments.ManagerHasClient(ctx, userID, doc.ClientID)
		}
	}

	return doc.CreatedBy == userID, nil
}
