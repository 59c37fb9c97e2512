package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"recordsapi/internal/model"
	"recordsapi/internal/repository"
)

// AuditPostgres appends access-decision events to the audit_log table.
type AuditPostgres struct {
	db *sql.DB
}

// NewAuditPostgres creates a new AuditPostgres repository.
func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

// Insert appends one audit event. The table is append-only by policy.
func (r *AuditPostgres) Insert(ctx context.Context, ev *model.AuditEvent) error {
	const q = `
		INSERT INTO audit_log (user_id, action, doc_uid, outcome, reason, ip, user_agent, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, q,
		ev.UserID,
		ev.Action,
		ev.DocUID,
		ev.Outcome,
		ev.Reason,
		ev.IP,
		ev.UserAgent,
		ev.CreatedAt,
	)
	return err
}

// ListByDocUIDs returns recent audit events for the given documents.
func (r *AuditPostgres) ListByDocUIDs(ctx context.Context, docUIDs []string, limit int) ([]model.AuditEvent, error) {
	if len(docUIDs) == 0 {
		return []model.AuditEvent{}, nil
	}

	placeholders := make([]string, len(docUIDs))
	args := make([]any, 0, len(docUIDs)+1)
	for i, uid := range docUIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args = append(args, uid)
	}
	args = append(args, limit)

	q := fmt.Sprintf(`
		SELECT id, user_id, action, COALESCE(doc_uid, ''), outcome, COALESCE(reason, ''), COALESCE(ip, ''), COALESCE(user_agent, ''), created_at
		FROM audit_log
		WHERE doc_uid IN (%s)
		ORDER BY created_at DESC
		LIMIT $%d`, strings.Join(placeholders, ", "), len(docUIDs)+1)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.AuditEvent, 0)
	for rows.Next() {
		var ev model.AuditEvent
		if err := rows.Scan(
			&ev.ID,
			&ev.UserID,
			&ev.Action,
			&ev.DocUID,
			&ev.Outcome,
			&ev.Reason,
			&ev.IP,
			&ev.UserAgent,
			&ev.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
