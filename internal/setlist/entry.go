package setlist

import (
	"fmt"
	"strconv"
	"strings"
)

// Entry is one set-list block. Entries are immutable once parsed and keep
// the order in which they appear in the set.
type Entry struct {
	Title   string `json:"title"`
	Version string `json:"version,omitempty"`
	Artist  string `json:"artist"`
	Label   string `json:"label,omitempty"`
	// Year is zero when absent.
	Year int `json:"year,omitempty"`
	// Line is the 1-based line number of the block's title line.
	Line int `json:"line"`
}

// DisplayTitle returns the title with its version in parentheses.
func (e Entry) DisplayTitle() string {
	if e.Version == "" {
		return e.Title
	}
	if e.Title == "" {
		return "(" + e.Version + ")"
	}
	return e.Title + " (" + e.Version + ")"
}

// YearString returns the year as text, or "" when absent.
func (e Entry) YearString() string {
	if e.Year == 0 {
		return ""
	}
	return strconv.Itoa(e.Year)
}

// Suffix returns "[label year]" with absent parts omitted, or "" when both
// are absent.
func (e Entry) Suffix() string {
	inner := strings.TrimSpace(strings.Join(nonEmpty(e.Label, e.YearString()), " "))
	if inner == "" {
		return ""
	}
	return "[" + inner + "]"
}

// String renders the entry as "Artist - Title (Version)".
func (e Entry) String() string {
	if e.Artist == "" {
		return e.DisplayTitle()
	}
	return e.Artist + " - " + e.DisplayTitle()
}

// MalformedEntryError describes a block that could not be parsed.
type MalformedEntryError struct {
	Line   int      `json:"line"`
	Lines  []string `json:"lines"`
	Reason string   `json:"reason"`
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("malformed entry at line %d: %s", e.Line, e.Reason)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
