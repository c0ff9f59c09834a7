package stage

import (
	"path/filepath"
	"strings"

	"setprep/internal/logging"
	"setprep/internal/matcher"
	"setprep/internal/setlist"
	"setprep/internal/tags"
)

// Work directories created under the target set folder.
const (
	ConvertedDir = "AIFF"
	ProcessedDir = "aiffProcessed"
)

// Track is a resolved set-list entry moving through the stage chain. Steps
// read its fields and may record results on it.
type Track struct {
	// Index is the 1-based position in the processed list.
	Index int
	Total int
	Entry setlist.Entry
	// Decision is the match decision that bound Source to Entry.
	Decision matcher.Decision
	// Source is the matched library file.
	Source string
	// Tags is the resolved tag set written by the tag stage.
	Tags tags.Set
	// WorkDir is the target set folder that receives converted files.
	WorkDir string
	// Analysis is the comment summary produced by the analyze stage.
	Analysis string
	// Final is the last output produced for the track.
	Final string
}

// Label returns "index/total" for logs.
func (t *Track) Label() string {
	return logging.TrackLabel(t.Index, t.Total)
}

// Stem returns the source file name without its extension.
func (t *Track) Stem() string {
	base := filepath.Base(t.Source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
