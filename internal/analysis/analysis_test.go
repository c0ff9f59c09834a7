package analysis

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{
			name: "full result",
			json: `{"rhythm":{"bpm":127.8,"danceability":1.34},"tonal":{"key_key":"A","key_scale":"minor","chords_key":"C","chords_scale":"major"}}`,
			want: "essentia:bpm=128;key=8A;chords=8B;energy=1",
		},
		{
			name: "unmapped chord renders unknown",
			json: `{"rhythm":{"bpm":124},"tonal":{"key_key":"F#","key_scale":"Minor","chords_key":"H","chords_scale":"major"}}`,
			want: "essentia:bpm=124;key=11A;chords=unknown",
		},
		{
			name: "scale without key renders unknown",
			json: `{"tonal":{"key_scale":"major"}}`,
			want: "essentia:key=unknown",
		},
		{
			name: "unmapped scale renders unknown",
			json: `{"tonal":{"key_key":"C","key_scale":"dorian"}}`,
			want: "essentia:key=unknown",
		},
		{
			name: "energy capped at ten",
			json: `{"rhythm":{"danceability":42.7}}`,
			want: "essentia:energy=10",
		},
		{
			name: "numeric strings accepted",
			json: `{"rhythm":{"bpm":"130.2"}}`,
			want: "essentia:bpm=130",
		},
		{
			name: "half rounds to even",
			json: `{"rhythm":{"bpm":122.5,"danceability":2.5}}`,
			want: "essentia:bpm=122;energy=2",
		},
		{
			name: "nothing usable",
			json: `{"rhythm":{"bpm":"fast"},"metadata":{}}`,
			want: NoSummary,
		},
		{
			name: "wrong section shape",
			json: `{"rhythm":[1,2],"tonal":{"key_key":"Eb","key_scale":"major"}}`,
			want: "essentia:key=5B",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			features, err := ParseFeatures([]byte(tt.json))
			if err != nil {
				t.Fatalf("ParseFeatures: %v", err)
			}
			if got := Summarize(features); got != tt.want {
				t.Fatalf("Summarize = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseFeaturesRejectsInvalidJSON(t *testing.T) {
	if _, err := ParseFeatures([]byte(`{"rhythm":`)); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestCamelotEnharmonics(t *testing.T) {
	for _, pair := range [][2]string{{"Gb", "F#"}, {"Db", "C#"}, {"Ab", "G#"}, {"Eb", "D#"}, {"Bb", "A#"}} {
		for _, scale := range []string{"major", "minor"} {
			a, okA := Camelot(pair[0], scale)
			b, okB := Camelot(pair[1], scale)
			if !okA || !okB || a != b {
				t.Fatalf("%s/%s %s: got %q %q", pair[0], pair[1], scale, a, b)
			}
		}
	}
	if _, ok := Camelot("C", ""); ok {
		t.Fatal("expected missing scale to be unmapped")
	}
}

func TestSummarizeFile(t *testing.T) {
	dir := t.TempDir()
	missing, err := SummarizeFile(filepath.Join(dir, "absent.json"))
	if err != nil {
		t.Fatalf("SummarizeFile: %v", err)
	}
	if missing != Missing {
		t.Fatalf("got %q, want %q", missing, Missing)
	}

	path := filepath.Join(dir, "track.json")
	if err := os.WriteFile(path, []byte(`{"rhythm":{"bpm":140}}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := SummarizeFile(path)
	if err != nil {
		t.Fatalf("SummarizeFile: %v", err)
	}
	if got != "essentia:bpm=140" {
		t.Fatalf("got %q", got)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := SummarizeFile(bad); err == nil {
		t.Fatal("expected decode error")
	}
}
