package postgres

import (
	"context"
	"database/sql"

	"recordsapi/internal/model"
	"recordsapi/internal/repository"
)

// DisposalPostgres writes disposal certificate rows.
type DisposalPostgres struct {
	db *sql.DB
}

// NewDisposalPostgres creates a new DisposalPostgres repository.
func NewDisposalPostgres(db *sql.DB) *DisposalPostgres {
	return &DisposalPostgres{db: db}
}

var _ repository.DisposalRepository = (*DisposalPostgres)(nil)

// Insert appends one disposal certificate.
func (r *DisposalPostgres) Insert(ctx context.Context, cert *model.DisposalCertificate) error {
	const q = `
		INSERT INTO disposal_certificate (doc_uid, version, disposed_by, method, notes, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)`
	_, err := r.db.ExecContext(ctx, q,
		cert.DocUID,
		cert.Version,
		cert.DisposedBy,
		cert.Method,
		cert.Notes,
		cert.CreatedAt,
	)
	return err
}
