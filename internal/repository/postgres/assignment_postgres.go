package postgres

import (
	"context"
	"database/sql"

	"recordsapi/internal/repository"
)

// AssignmentPostgres reads the manager relationship tables. Both tables are
// externally maintained; this repository only checks row existence.
type AssignmentPostgres struct {
	db *sql.DB
}

// NewAssignmentPostgres creates a new AssignmentPostgres repository.
func NewAssignmentPostgres(db *sql.DB) *AssignmentPostgres {
	return &AssignmentPostgres{db: db}
}

var _ repository.AssignmentRepository = (*AssignmentPostgres)(nil)

// ManagerHasStaff reports whether the manager is assigned the staff member.
func (r *AssignmentPostgres) ManagerHasStaff(ctx context.Context, managerID, staffID string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM manager_staff_assignment
			WHERE manager_id = $1 AND staff_id = $2
		)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, managerID, staffID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ManagerHasClient reports whether the manager is assigned the client.
func (r *AssignmentPostgres) ManagerHasClient(ctx context.Context, managerID, clientID string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM client_manager_assignment
			WHERE manager_id = $1 AND client_id = $2
		)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, managerID, clientID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
