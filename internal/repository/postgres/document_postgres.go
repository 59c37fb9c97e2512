package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"recordsapi/internal/model"
	"recordsapi/internal/repository"
)

const documentColumns = `
	doc_uid, doc_type, version, title, COALESCE(description, ''),
	classification_level, COALESCE(staff_id, ''), COALESCE(client_id, ''), COALESCE(supplier_id, ''),
	retention_class, retention_trigger_date, disposal_due_date,
	legal_hold, COALESCE(legal_hold_reason, ''),
	file_size, mime_type, storage_path, created_by, created_at`

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

func scanDocument(row interface{ Scan(dest ...any) error }) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(
		&d.DocUID,
		&d.DocType,
		&d.Version,
		&d.Title,
		&d.Description,
		&d.ClassificationLevel,
		&d.StaffID,
		&d.ClientID,
		&d.SupplierID,
		&d.RetentionClass,
		&d.RetentionTrigger,
		&d.DisposalDue,
		&d.LegalHold,
		&d.LegalHoldReason,
		&d.FileSize,
		&d.MimeType,
		&d.StoragePath,
		&d.CreatedBy,
		&d.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new document metadata row and returns the stored record.
// A uniqueness violation on (doc_uid, version) or storage_path is translated
// into repository.ErrDuplicate so the caller can surface a conflict.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (
			doc_uid, doc_type, version, title, description,
			classification_level, staff_id, client_id, supplier_id,
			retention_class, retention_trigger_date, disposal_due_date,
			legal_hold, legal_hold_reason,
			file_size, mime_type, storage_path, created_by, created_at
		)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''),
			$10, $11, $12, $13, NULLIF($14, ''), $15, $16, $17, $18, $19)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.DocUID,
		doc.DocType,
		doc.Version,
		doc.Title,
		doc.Description,
		doc.ClassificationLevel,
		doc.StaffID,
		doc.ClientID,
		doc.SupplierID,
		doc.RetentionClass,
		doc.RetentionTrigger,
		doc.DisposalDue,
		doc.LegalHold,
		doc.LegalHoldReason,
		doc.FileSize,
		doc.MimeType,
		doc.StoragePath,
		doc.CreatedBy,
		doc.CreatedAt,
	)
	out, err := scanDocument(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return out, nil
}

// FindByUID fetches the latest version of a document by doc_uid.
func (r *DocumentPostgres) FindByUID(ctx context.Context, docUID string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE doc_uid = $1
		ORDER BY version DESC
		LIMIT 1`
	return scanDocument(r.db.QueryRowContext(ctx, q, docUID))
}

// FindByUIDVersion fetches a specific version of a document.
func (r *DocumentPostgres) FindByUIDVersion(ctx context.Context, docUID string, version int) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE doc_uid = $1 AND version = $2`
	return scanDocument(r.db.QueryRowContext(ctx, q, docUID, version))
}

// ListRecent returns the most recently created documents, newest first.
func (r *DocumentPostgres) ListRecent(ctx context.Context, limit int) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		ORDER BY created_at DESC, doc_uid DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes all version rows of a document. Missing rows are not an error.
func (r *DocumentPostgres) Delete(ctx context.Context, docUID string) error {
	const q = `DELETE FROM documents WHERE doc_uid = $1`
	res, err := r.db.ExecContext(ctx, q, docUID)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

// MarkDueForReview flips classification to DUE_FOR_REVIEW for documents whose
// disposal due date falls on or before the cutoff, skipping legal holds.
func (r *DocumentPostgres) MarkDueForReview(ctx context.Context, cutoff time.Time) (int, error) {
	const q = `
		UPDATE documents
		SET classification_level = 'DUE_FOR_REVIEW'
		WHERE disposal_due_date <= $1 AND legal_hold = FALSE
		  AND classification_level <> 'DUE_FOR_REVIEW'`
	res, err := r.db.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
