package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"setprep/internal/config"
	"setprep/internal/runlog"
)

// Run is one row of run history.
type Run struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Target     string
	SetFile    string
	DryRun     bool
	Cancelled  bool
	Summary    runlog.Summary
}

// Store persists run history in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the history database under the configured state directory.
func Open(cfg *config.Config) (*Store, error) {
	return OpenPath(cfg.HistoryPath())
}

// OpenPath opens or creates the history database at path.
func OpenPath(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Record inserts or replaces the history row for log.
func (s *Store) Record(ctx context.Context, log *runlog.Log) error {
	if log == nil {
		return errors.New("run log is nil")
	}
	data, err := runlog.Encode(log)
	if err != nil {
		return err
	}
	summary := log.Summary()
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (
            run_id, started_at, finished_at, target, set_file, dry_run, cancelled,
            complete, partial, failed, unprocessed, unresolved, malformed, log_json
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.RunID,
		log.StartedAt.UTC().Format(time.RFC3339Nano),
		nullableTime(log.FinishedAt),
		nullableString(log.Target),
		nullableString(log.SetFile),
		boolToInt(log.DryRun),
		boolToInt(log.Cancelled),
		summary.Complete,
		summary.Partial,
		summary.Failed,
		summary.Unprocessed,
		summary.Unresolved,
		summary.Malformed,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

const runColumns = "run_id, started_at, finished_at, target, set_file, dry_run, cancelled, complete, partial, failed, unprocessed, unresolved, malformed"

// List returns the most recent runs first. A limit <= 0 returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, run_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Log loads the full run log for runID. It returns nil when no such run exists.
func (s *Store) Log(ctx context.Context, runID string) (*runlog.Log, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT log_json FROM runs WHERE run_id = ?`, runID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}
	return runlog.Decode([]byte(data))
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		startedRaw  string
		finishedRaw sql.NullString
		target      sql.NullString
		setFile     sql.NullString
		dryRun      int
		cancelled   int
	)
	if err := scanner.Scan(
		&run.RunID,
		&startedRaw,
		&finishedRaw,
		&target,
		&setFile,
		&dryRun,
		&cancelled,
		&run.Summary.Complete,
		&run.Summary.Partial,
		&run.Summary.Failed,
		&run.Summary.Unprocessed,
		&run.Summary.Unresolved,
		&run.Summary.Malformed,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTime(startedRaw)
	if finishedRaw.Valid {
		run.FinishedAt = parseTime(finishedRaw.String)
	}
	run.Target = target.String
	run.SetFile = setFile.String
	run.DryRun = dryRun != 0
	run.Cancelled = cancelled != 0
	return run, nil
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
