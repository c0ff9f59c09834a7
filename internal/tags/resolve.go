package tags

import (
	"strings"

	"setprep/internal/setlist"
)

// Options carries the configured defaults used by Resolve.
type Options struct {
	DefaultGenre string
	Album        string
}

// Resolve computes the target tags for a file matched to entry.
//
//   - Title keeps a non-empty existing title, else uses the entry title with
//     its version, else the file stem. The "[label year]" suffix is appended
//     unless the title already contains it (case-insensitive).
//   - Artist and AlbumArtist always come from the entry.
//   - Year, Genre, and Album are filled only when missing.
//   - Comment is cleared.
func Resolve(entry setlist.Entry, stem string, existing Set, opts Options) Set {
	existing = existing.Normalized()

	title := existing.Title
	if title == "" {
		title = strings.TrimSpace(entry.DisplayTitle())
	}
	if title == "" {
		title = strings.TrimSpace(stem)
	}
	if suffix := entry.Suffix(); suffix != "" && !strings.Contains(strings.ToLower(title), strings.ToLower(suffix)) {
		title = strings.TrimSpace(title + " " + suffix)
	}

	artist := strings.TrimSpace(entry.Artist)
	if artist == "" {
		artist = existing.Artist
	}

	resolved := Set{
		Title:       title,
		Artist:      artist,
		AlbumArtist: artist,
		Year:        existing.Year,
		Genre:       existing.Genre,
		Album:       existing.Album,
	}
	if resolved.Year == "" {
		resolved.Year = entry.YearString()
	}
	if resolved.Genre == "" {
		resolved.Genre = strings.TrimSpace(opts.DefaultGenre)
	}
	if resolved.Album == "" {
		resolved.Album = strings.TrimSpace(opts.Album)
	}
	return resolved
}
