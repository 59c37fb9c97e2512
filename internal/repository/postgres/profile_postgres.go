package postgres

import (
	"context"
	"database/sql"

	"recordsapi/internal/repository"
)

// ProfilePostgres looks up role records keyed by verified user ID.
type ProfilePostgres struct {
	db *sql.DB
}

// NewProfilePostgres creates a new ProfilePostgres repository.
func NewProfilePostgres(db *sql.DB) *ProfilePostgres {
	return &ProfilePostgres{db: db}
}

var _ repository.ProfileRepository = (*ProfilePostgres)(nil)

// RoleByUserID returns the stored role for a user, or sql.ErrNoRows.
func (r *ProfilePostgres) RoleByUserID(ctx context.Context, userID string) (string, error) {
	const q = `SELECT role FROM profiles WHERE user_id = $1`
	var role string
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&role); err != nil {
		return "", err
	}
	return role, nil
}
