package runlog

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"setprep/internal/fileutil"
)

// FileName is the run log written into the target set folder.
const FileName = "runlog.json"

// Sink persists a finished log.
type Sink interface {
	Persist(ctx context.Context, log *Log) error
}

// FileSink writes the log as indented JSON into the target folder and keeps
// a timestamped copy in the runs directory. Dry runs only write the copy.
type FileSink struct {
	TargetDir string
	RunsDir   string
}

// Persist implements Sink.
func (s FileSink) Persist(ctx context.Context, log *Log) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(log)
	if err != nil {
		return err
	}
	if s.TargetDir != "" && !log.DryRun {
		if err := fileutil.WriteFileAtomic(filepath.Join(s.TargetDir, FileName), data, defaultFileMode); err != nil {
			return fmt.Errorf("write run log: %w", err)
		}
	}
	if s.RunsDir != "" {
		if err := fileutil.WriteFileAtomic(s.ArchivePath(log), data, defaultFileMode); err != nil {
			return fmt.Errorf("archive run log: %w", err)
		}
	}
	return nil
}

// ArchivePath returns the runs-directory path for log.
func (s FileSink) ArchivePath(log *Log) string {
	name := fmt.Sprintf("%s-%s.json", log.StartedAt.UTC().Format(runFileTimestamp), log.RunID)
	return filepath.Join(s.RunsDir, name)
}

// Encode renders log as indented JSON with a trailing newline.
func Encode(log *Log) ([]byte, error) {
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode run log: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a persisted log.
func Decode(data []byte) (*Log, error) {
	var log Log
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("decode run log: %w", err)
	}
	return &log, nil
}
