package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// mp3Header is an empty ID3v2.4 tag followed by an MPEG frame sync, enough
// for content sniffing to classify the file as audio.
var mp3Header = []byte{'I', 'D', '3', 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xFF, 0xFB, 0x90, 0x64}

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	writeBytes(t, path, buf)
}

// WriteAudio writes a small file that sniffs as MP3 audio. Its content is not
// playable.
func WriteAudio(t testing.TB, path string) {
	t.Helper()

	buf := make([]byte, 0, 512)
	buf = append(buf, mp3Header...)
	for len(buf) < cap(buf) {
		buf = append(buf, 0x00)
	}
	writeBytes(t, path, buf)
}

func writeBytes(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
