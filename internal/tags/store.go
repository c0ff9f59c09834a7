package tags

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"

	"setprep/internal/logging"
)

// Reader reads the managed fields from an audio file.
type Reader interface {
	Read(path string) (Set, error)
}

// Writer persists tag fields to an audio file.
type Writer interface {
	Write(path string, set Set) error
	WriteComment(path, comment string) error
}

// Store reads and writes tags with taglib.
type Store struct {
	logger *slog.Logger
}

// NewStore constructs a Store.
func NewStore(logger *slog.Logger) *Store {
	return &Store{logger: logging.NewComponentLogger(logger, "tags")}
}

// Read returns the managed fields of path. Files taglib cannot parse are
// retried with the pure-Go reader before giving up.
func (s *Store) Read(path string) (Set, error) {
	values, err := taglib.ReadTags(path)
	if err == nil {
		return fromTaglib(values), nil
	}
	set, fallbackErr := readFallback(path)
	if fallbackErr != nil {
		return Set{}, fmt.Errorf("read tags %s: %w", path, err)
	}
	s.logger.Debug("taglib read failed; used fallback reader",
		logging.String("path", path),
		logging.Error(err),
	)
	return set, nil
}

// Write replaces the managed fields. Empty fields are removed from the file;
// unmanaged tags are left alone.
func (s *Store) Write(path string, set Set) error {
	set = set.Normalized()
	values := map[string][]string{
		taglib.Title:       valueList(set.Title),
		taglib.Artist:      valueList(set.Artist),
		taglib.AlbumArtist: valueList(set.AlbumArtist),
		taglib.Date:        valueList(set.Year),
		taglib.Genre:       valueList(set.Genre),
		taglib.Comment:     valueList(set.Comment),
		taglib.Album:       valueList(set.Album),
	}
	if err := taglib.WriteTags(path, values, taglib.DiffBeforeWrite); err != nil {
		return fmt.Errorf("write tags %s: %w", path, err)
	}
	return nil
}

// WriteComment replaces only the comment field.
func (s *Store) WriteComment(path, comment string) error {
	values := map[string][]string{taglib.Comment: valueList(comment)}
	if err := taglib.WriteTags(path, values, taglib.DiffBeforeWrite); err != nil {
		return fmt.Errorf("write comment %s: %w", path, err)
	}
	return nil
}

func valueList(value string) []string {
	if value == "" {
		return nil
	}
	return []string{value}
}

func fromTaglib(values map[string][]string) Set {
	first := func(key string) string {
		if v := values[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	return Set{
		Title:       first(taglib.Title),
		Artist:      first(taglib.Artist),
		AlbumArtist: first(taglib.AlbumArtist),
		Year:        first(taglib.Date),
		Genre:       first(taglib.Genre),
		Comment:     first(taglib.Comment),
		Album:       first(taglib.Album),
	}.Normalized()
}

func readFallback(path string) (Set, error) {
	file, err := os.Open(path)
	if err != nil {
		return Set{}, err
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return Set{}, err
	}
	set := Set{
		Title:       metadata.Title(),
		Artist:      metadata.Artist(),
		AlbumArtist: metadata.AlbumArtist(),
		Genre:       metadata.Genre(),
		Comment:     metadata.Comment(),
		Album:       metadata.Album(),
	}
	if year := metadata.Year(); year > 0 {
		set.Year = strconv.Itoa(year)
	}
	return set.Normalized(), nil
}
