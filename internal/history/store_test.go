package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"setprep/internal/history"
	"setprep/internal/runlog"
	"setprep/internal/testsupport"
)

func mustOpen(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(testsupport.NewConfig(t))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestRecordAndList(t *testing.T) {
	store := mustOpen(t)
	ctx := context.Background()

	older := runlog.New(time.Date(2026, 4, 1, 20, 0, 0, 0, time.UTC), false)
	older.Target = "/sets/2026.04.01"
	older.Tracks = append(older.Tracks, runlog.Track{Index: 1, Status: runlog.TrackComplete})
	older.Finish(older.StartedAt.Add(time.Minute))

	newer := runlog.New(time.Date(2026, 4, 8, 20, 0, 0, 0, time.UTC), true)
	newer.Unresolved = append(newer.Unresolved, runlog.Unresolved{Status: runlog.StatusNoMatch, Reason: runlog.ReasonNotFound})

	for _, log := range []*runlog.Log{older, newer} {
		if err := store.Record(ctx, log); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != newer.RunID {
		t.Fatalf("expected newest run first, got %+v", runs)
	}
	if !runs[0].DryRun || runs[0].Summary.Unresolved != 1 || !runs[0].FinishedAt.IsZero() {
		t.Fatalf("unexpected newest run %+v", runs[0])
	}
	if runs[1].Target != "/sets/2026.04.01" || runs[1].Summary.Complete != 1 {
		t.Fatalf("unexpected older run %+v", runs[1])
	}

	limited, err := store.List(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("List(1) = %d runs, %v", len(limited), err)
	}

	loaded, err := store.Log(ctx, older.RunID)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if loaded == nil || len(loaded.Tracks) != 1 {
		t.Fatalf("unexpected loaded log %+v", loaded)
	}
	missing, err := store.Log(ctx, "absent")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for unknown run, got %+v %v", missing, err)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	log := runlog.New(time.Now(), false)
	if err := store.Record(context.Background(), log); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := history.OpenPath(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	runs, err := reopened.List(context.Background(), 0)
	if err != nil || len(runs) != 1 || runs[0].RunID != log.RunID {
		t.Fatalf("expected persisted run, got %+v %v", runs, err)
	}
}

func TestOpenRejectsForeignSchema(t *testing.T) {
	tests := []struct {
		name    string
		tamper  string
		wantMsg string
	}{
		{name: "newer version", tamper: "UPDATE schema_version SET version = 2", wantMsg: "version 2"},
		{name: "missing runs table", tamper: "DROP TABLE runs", wantMsg: `table "runs" is missing`},
		{name: "empty version table", tamper: "DELETE FROM schema_version", wantMsg: "schema_version is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "history.db")
			store, err := history.OpenPath(path)
			if err != nil {
				t.Fatalf("OpenPath: %v", err)
			}
			store.Close()

			db, err := sql.Open("sqlite", path)
			if err != nil {
				t.Fatalf("sql.Open: %v", err)
			}
			if _, err := db.Exec(tt.tamper); err != nil {
				t.Fatalf("tamper: %v", err)
			}
			db.Close()

			_, err = history.OpenPath(path)
			if !errors.Is(err, history.ErrSchemaMismatch) {
				t.Fatalf("expected ErrSchemaMismatch, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) || !strings.Contains(err.Error(), path) {
				t.Fatalf("error should name the problem and %s: %v", path, err)
			}
		})
	}
}
