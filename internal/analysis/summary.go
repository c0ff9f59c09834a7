package analysis

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"setprep/internal/services"
)

const (
	summaryPrefix = "essentia:"
	// NoSummary is the summary of an extractor result with no usable values.
	NoSummary = summaryPrefix + "no-summary"
	// Missing is the summary used when the extractor wrote no result file.
	Missing = summaryPrefix + "missing"
	// maxEnergy caps the danceability-derived energy value.
	maxEnergy = 10
)

// Summarize renders features as "essentia:bpm=..;key=..;chords=..;energy=..".
// Fields without a value are omitted. Rounding is half-to-even.
func Summarize(f Features) string {
	var parts []string
	if f.BPM != nil {
		parts = append(parts, "bpm="+strconv.Itoa(int(math.RoundToEven(*f.BPM))))
	}
	if key := camelotOrUnknown(f.Key, f.Scale); key != "" {
		parts = append(parts, "key="+key)
	}
	if chords := camelotOrUnknown(f.ChordsKey, f.ChordsScale); chords != "" {
		parts = append(parts, "chords="+chords)
	}
	if f.Danceability != nil {
		energy := math.RoundToEven(math.Min(*f.Danceability, maxEnergy))
		parts = append(parts, "energy="+strconv.Itoa(int(energy)))
	}
	if len(parts) == 0 {
		return NoSummary
	}
	return summaryPrefix + strings.Join(parts, ";")
}

// SummarizeFile reads the extractor result at path and summarizes it. A
// missing file yields Missing without an error.
func SummarizeFile(path string) (string, error) {
	features, err := ReadFeatures(path)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return Missing, nil
		}
		return "", err
	}
	return Summarize(features), nil
}
