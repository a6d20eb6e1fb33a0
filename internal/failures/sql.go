package failures

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbsmedya/clmigrate/internal/sqlutil"
)

// SQLRecorder appends failures to a MySQL table, one row per failure,
// stamped with the run id.
type SQLRecorder struct {
	db     *sql.DB
	table  string // quoted
	runID  string
	insert string
}

// NewSQLRecorder validates the table name and prepares the recorder.
func NewSQLRecorder(db *sql.DB, table, runID string) (*SQLRecorder, error) {
	quoted, err := sqlutil.QuoteTable(table)
	if err != nil {
		return nil, fmt.Errorf("failure store table: %w", err)
	}
	return &SQLRecorder{
		db:    db,
		table: quoted,
		runID: runID,
		insert: fmt.Sprintf("INSERT INTO %s "+
			"(run_id, resource, kind, identity, old_id, status_code, payload, response, error) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)", quoted),
	}, nil
}

// EnsureTable creates the failure table when it does not exist.
func (r *SQLRecorder) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
  run_id CHAR(36) NOT NULL,
  resource VARCHAR(32) NOT NULL,
  kind VARCHAR(16) NOT NULL,
  identity VARCHAR(512) NOT NULL DEFAULT '',
  old_id BIGINT NULL,
  status_code INT NULL,
  payload MEDIUMTEXT NULL,
  response MEDIUMTEXT NULL,
  error TEXT NULL,
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  KEY idx_run (run_id)
)`, r.table)

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create failure table: %w", err)
	}
	return nil
}

// Record implements Recorder.
func (r *SQLRecorder) Record(ctx context.Context, f Failure) error {
	_, err := r.db.ExecContext(ctx, r.insert,
		r.runID,
		f.Resource,
		string(f.Kind),
		f.Identity,
		nullInt64(f.OldID),
		nullInt64(int64(f.StatusCode)),
		nullString(f.Payload),
		nullString(f.Response),
		nullString([]byte(f.errString())),
	)
	if err != nil {
		return fmt.Errorf("failed to store failure: %w", err)
	}
	return nil
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func nullString(b []byte) sql.NullString {
	return sql.NullString{String: string(b), Valid: len(b) > 0}
}
