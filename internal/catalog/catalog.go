// Package catalog scans the source library for candidate audio files.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/h2non/filetype"

	"setprep/internal/logging"
	"setprep/internal/services"
	"setprep/internal/tags"
)

// DefaultExtensions is the fixed set of audio extensions considered for matching.
var DefaultExtensions = []string{".mp3", ".aif", ".aiff", ".wav", ".flac", ".m4a"}

// sniffLength covers the magic numbers filetype inspects.
const sniffLength = 262

// Candidate is an audio file considered as a match for a set-list entry.
type Candidate struct {
	Path string   `json:"path"`
	Stem string   `json:"stem"`
	Tags tags.Set `json:"existing_tags"`
}

// NewCandidate builds a candidate for path with the given tag snapshot.
func NewCandidate(path string, existing tags.Set) Candidate {
	base := filepath.Base(path)
	return Candidate{
		Path: path,
		Stem: strings.TrimSuffix(base, filepath.Ext(base)),
		Tags: existing,
	}
}

// Scanner walks a source root and reads each candidate's tags.
type Scanner struct {
	reader     tags.Reader
	logger     *slog.Logger
	extensions map[string]struct{}
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithExtensions overrides the accepted file extensions.
func WithExtensions(exts ...string) Option {
	return func(s *Scanner) {
		s.extensions = extensionSet(exts)
	}
}

// NewScanner constructs a Scanner. A nil reader skips tag reading.
func NewScanner(reader tags.Reader, logger *slog.Logger, opts ...Option) *Scanner {
	s := &Scanner{
		reader:     reader,
		logger:     logging.NewComponentLogger(logger, "catalog"),
		extensions: extensionSet(DefaultExtensions),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func extensionSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}

// Scan returns candidates under root sorted by path. Hidden directories are
// skipped, as are files whose content is recognizably not audio.
func (s *Scanner) Scan(ctx context.Context, root string) ([]Candidate, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "scan", "stat source", root, err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "scan", "stat source", root+" is not a directory", nil)
	}

	var candidates []Candidate
	skipped := 0
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			s.logger.Debug("skipping unreadable path", logging.String("path", path), logging.Error(walkErr))
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.accepts(d.Name()) {
			return nil
		}
		if !looksLikeAudio(path) {
			skipped++
			s.logger.Debug("skipping file with non-audio content", logging.String("path", path))
			return nil
		}
		candidates = append(candidates, NewCandidate(path, s.readTags(path)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Path < candidates[j].Path })
	s.logger.Info("source scan complete",
		logging.String(logging.FieldEventType, "scan_complete"),
		logging.String("root", root),
		logging.Int("candidates", len(candidates)),
		logging.Int("skipped_non_audio", skipped),
	)
	return candidates, nil
}

func (s *Scanner) accepts(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	_, ok := s.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

func (s *Scanner) readTags(path string) tags.Set {
	if s.reader == nil {
		return tags.Set{}
	}
	set, err := s.reader.Read(path)
	if err != nil {
		s.logger.Debug("tag read failed; treating tags as absent", logging.String("path", path), logging.Error(err))
		return tags.Set{}
	}
	return set
}

// looksLikeAudio rejects files whose magic number identifies a non-audio
// type. Unrecognized content is accepted since the extension already matched.
func looksLikeAudio(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false
	}
	head = head[:n]
	if len(head) == 0 {
		return false
	}
	if filetype.IsAudio(head) {
		return true
	}
	kind, err := filetype.Match(head)
	if err != nil {
		return false
	}
	return kind == filetype.Unknown
}
