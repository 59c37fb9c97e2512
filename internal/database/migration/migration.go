package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  doc_uid               TEXT        NOT NULL,
  version               INTEGER     NOT NULL CHECK (version >= 1),
  doc_type              TEXT        NOT NULL,
  title                 TEXT        NOT NULL,
  description           TEXT,
  classification_level  TEXT        NOT NULL DEFAULT 'INTERNAL',
  staff_id              TEXT,
  client_id             TEXT,
  supplier_id           TEXT,
  retention_class       TEXT        NOT NULL DEFAULT 'DEFAULT_7Y',
  retention_trigger_date DATE       NOT NULL,
  disposal_due_date     DATE        NOT NULL,
  legal_hold            BOOLEAN     NOT NULL DEFAULT FALSE,
  legal_hold_reason     TEXT,
  file_size             BIGINT      NOT NULL CHECK (file_size > 0),
  mime_type             TEXT        NOT NULL,
  storage_path          TEXT        NOT NULL UNIQUE,
  created_by            TEXT        NOT NULL,
  created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (doc_uid, version)
);`,
	},
	{
		Name: "create_index_documents_doc_type",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_doc_type ON documents (doc_type);`,
	},
	{
		Name: "create_index_documents_created_by",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_created_by ON documents (created_by);`,
	},
	{
		Name: "create_index_documents_disposal_due",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_disposal_due ON documents (disposal_due_date);`,
	},
	{
		Name: "create_table_profiles",
		SQL: `CREATE TABLE IF NOT EXISTS profiles (
  user_id    TEXT        PRIMARY KEY,
  role       TEXT        NOT NULL DEFAULT 'STAFF',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_manager_staff_assignment",
		SQL: `CREATE TABLE IF NOT EXISTS manager_staff_assignment (
  manager_id TEXT        NOT NULL,
  staff_id   TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (manager_id, staff_id)
);`,
	},
	{
		Name: "create_table_client_manager_assignment",
		SQL: `CREATE TABLE IF NOT EXISTS client_manager_assignment (
  manager_id TEXT        NOT NULL,
  client_id  TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (manager_id, client_id)
);`,
	},
	{
		Name: "create_table_audit_log",
		SQL: `CREATE TABLE IF NOT EXISTS audit_log (
  id         BIGSERIAL   PRIMARY KEY,
  user_id    TEXT        NOT NULL,
  action     TEXT        NOT NULL,
  doc_uid    TEXT,
  outcome    TEXT        NOT NULL,
  reason     TEXT,
  ip         TEXT,
  user_agent TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_audit_log_doc_uid",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_audit_log_doc_uid ON audit_log (doc_uid);`,
	},
	{
		Name: "create_table_disposal_certificate",
		SQL: `CREATE TABLE IF NOT EXISTS disposal_certificate (
  id          BIGSERIAL   PRIMARY KEY,
  doc_uid     TEXT        NOT NULL,
  version     INTEGER     NOT NULL,
  disposed_by TEXT        NOT NULL,
  method      TEXT        NOT NULL,
  notes       TEXT,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
}

// EnsureMigrated checks if the 'documents' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.documents') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
