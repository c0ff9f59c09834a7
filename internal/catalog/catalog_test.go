package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"setprep/internal/logging"
	"setprep/internal/services"
	"setprep/internal/tags"
)

type stubReader struct {
	sets map[string]tags.Set
	fail map[string]bool
}

func (r stubReader) Read(path string) (tags.Set, error) {
	if r.fail[filepath.Base(path)] {
		return tags.Set{}, errors.New("unreadable")
	}
	return r.sets[filepath.Base(path)], nil
}

// Minimal MP3 header: an ID3v2 tag marker.
var mp3Head = append([]byte("ID3\x04\x00\x00\x00\x00\x00\x00"), make([]byte, 32)...)

// PNG magic number.
var pngHead = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}

func write(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanFiltersAndSorts(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "b", "Strobe.mp3"), mp3Head)
	write(t, filepath.Join(root, "a", "Ghosts n Stuff.MP3"), mp3Head)
	write(t, filepath.Join(root, "a", "raw.aiff"), []byte("FORM\x00\x00\x00\x00AIFFCOMM"))
	write(t, filepath.Join(root, "cover.jpg"), []byte{0xff, 0xd8, 0xff})
	write(t, filepath.Join(root, "fake.mp3"), pngHead)
	write(t, filepath.Join(root, "empty.mp3"), nil)
	write(t, filepath.Join(root, ".trash", "Old.mp3"), mp3Head)
	write(t, filepath.Join(root, "._Strobe.mp3"), mp3Head)

	reader := stubReader{sets: map[string]tags.Set{"Strobe.mp3": {Artist: "Deadmau5"}}}
	candidates, err := NewScanner(reader, logging.NewNop()).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	var got []string
	for _, c := range candidates {
		rel, _ := filepath.Rel(root, c.Path)
		got = append(got, rel)
	}
	want := []string{
		filepath.Join("a", "Ghosts n Stuff.MP3"),
		filepath.Join("a", "raw.aiff"),
		filepath.Join("b", "Strobe.mp3"),
	}
	if len(got) != len(want) {
		t.Fatalf("unexpected candidates %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidate %d = %s, want %s", i, got[i], want[i])
		}
	}
	if candidates[2].Stem != "Strobe" || candidates[2].Tags.Artist != "Deadmau5" {
		t.Fatalf("unexpected candidate %+v", candidates[2])
	}
}

func TestScanTreatsUnreadableTagsAsAbsent(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "Track.mp3"), mp3Head)
	reader := stubReader{fail: map[string]bool{"Track.mp3": true}}

	candidates, err := NewScanner(reader, logging.NewNop()).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(candidates) != 1 || !candidates[0].Tags.IsEmpty() {
		t.Fatalf("expected one untagged candidate, got %+v", candidates)
	}
}

func TestScanWithExtensions(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.mp3"), mp3Head)
	write(t, filepath.Join(root, "b.ogg"), []byte("OggS\x00"))

	candidates, err := NewScanner(nil, logging.NewNop(), WithExtensions("ogg")).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Stem != "b" {
		t.Fatalf("unexpected candidates %+v", candidates)
	}
}

func TestScanMissingRoot(t *testing.T) {
	_, err := NewScanner(nil, logging.NewNop()).Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestScanHonorsCancellation(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.mp3"), mp3Head)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewScanner(nil, logging.NewNop()).Scan(ctx, root); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewCandidateStem(t *testing.T) {
	c := NewCandidate("/music/Artist - Song.v2.aiff", tags.Set{})
	if c.Stem != "Artist - Song.v2" {
		t.Fatalf("unexpected stem %q", c.Stem)
	}
}
