package repository

import (
	"context"
	"time"

	"recordsapi/internal/model"
)

// DocumentRepository defines data access for document metadata using SQL only.
// No business logic here — strictly persistence operations. Not-found is
// signaled with sql.ErrNoRows; duplicate inserts with ErrDuplicate.
type DocumentRepository interface {
	// Create inserts a new document metadata row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByUID returns the latest version of a document by its doc_uid.
	FindByUID(ctx context.Context, docUID string) (*model.Document, error)

	// FindByUIDVersion returns a specific version of a document.
	FindByUIDVersion(ctx context.Context, docUID string, version int) (*model.Document, error)

	// ListRecent returns the most recently created documents, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.Document, error)

	// Delete removes every version row of a document by doc_uid. It returns
	// nil if no row existed.
	Delete(ctx context.Context, docUID string) error

	// MarkDueForReview flags documents whose disposal due date falls on or
	// before the cutoff and that carry no legal hold. Returns the number of
	// rows updated.
	MarkDueForReview(ctx context.Context, cutoff time.Time) (int, error)
}

// AssignmentRepository reads the externally maintained manager relationship
// tables. This core never writes them.
type AssignmentRepository interface {
	// ManagerHasStaff reports whether (managerID, staffID) exists in the
	// manager-staff assignment table.
	ManagerHasStaff(ctx context.Context, managerID, staffID string) (bool, error)

	// ManagerHasClient reports whether (managerID, clientID) exists in the
	// client-manager assignment table.
	ManagerHasClient(ctx context.Context, managerID, clientID string) (bool, error)
}

// ProfileRepository looks up the role record backing a verified identity.
type ProfileRepository interface {
	// RoleByUserID returns the stored role for a user, or sql.ErrNoRows.
	RoleByUserID(ctx context.Context, userID string) (string, error)
}

// AuditRepository appends access-decision events to the audit sink.
type AuditRepository interface {
	// Insert appends one audit event.
	Insert(ctx context.Context, ev *model.AuditEvent) error

	// ListByDocUIDs returns recent audit events for the given documents,
	// newest first.
	ListByDocUIDs(ctx context.Context, docUIDs []string, limit int) ([]model.AuditEvent, error)
}

// DisposalRepository writes disposal certificate rows.
type DisposalRepository interface {
	// Insert appends one disposal certificate.
	Insert(ctx context.Context, cert *model.DisposalCertificate) error
}
