package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// historySchemaVersion tracks schema.sql. History is disposable, so a
// mismatch asks the operator to delete the database instead of migrating.
const historySchemaVersion = 1

const runsTable = "runs"

// ErrSchemaMismatch reports a history database written by a different
// version of setprep.
var ErrSchemaMismatch = errors.New("history schema mismatch")

// requiredRunColumns are the columns Record and List depend on.
var requiredRunColumns = []string{"run_id", "started_at", "target", "dry_run", "cancelled", "log_json"}

func (s *Store) initSchema(ctx context.Context) error {
	version, found, err := s.readVersion(ctx)
	if err != nil {
		return err
	}
	if !found {
		return s.createSchema(ctx)
	}
	if version != historySchemaVersion {
		return s.mismatch("database has version %d, setprep expects %d", version, historySchemaVersion)
	}
	columns, err := s.tableColumns(ctx, runsTable)
	if err != nil {
		return err
	}
	for _, name := range requiredRunColumns {
		if _, ok := columns[name]; !ok {
			return s.mismatch("table %q lacks column %q", runsTable, name)
		}
	}
	return nil
}

func (s *Store) readVersion(ctx context.Context) (int, bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&count); err != nil {
		return 0, false, fmt.Errorf("inspect history schema: %w", err)
	}
	if count == 0 {
		return 0, false, nil
	}
	var version int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, true, s.mismatch("schema_version is empty")
	}
	if err != nil {
		return 0, false, fmt.Errorf("read history schema version: %w", err)
	}
	return version, true, nil
}

func (s *Store) tableColumns(ctx context.Context, table string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, fmt.Errorf("inspect %s table: %w", table, err)
	}
	defer rows.Close()
	columns := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("inspect %s table: %w", table, err)
		}
		columns[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("inspect %s table: %w", table, err)
	}
	if len(columns) == 0 {
		return nil, s.mismatch("table %q is missing", table)
	}
	return columns, nil
}

func (s *Store) mismatch(format string, args ...any) error {
	return fmt.Errorf("%w: %s (delete %s to start a fresh run history)",
		ErrSchemaMismatch, fmt.Sprintf(format, args...), s.path)
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history schema: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create history tables: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", historySchemaVersion); err != nil {
		return fmt.Errorf("stamp history schema version: %w", err)
	}
	return tx.Commit()
}
