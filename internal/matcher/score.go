package matcher

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"setprep/internal/catalog"
	"setprep/internal/setlist"
	"setprep/internal/textutil"
)

const (
	// fullTitleContained scores a stem that contains the title with its version.
	fullTitleContained = 1.0
	// baseTitleContained scores a stem that contains the title but not the version.
	baseTitleContained = 0.9
)

var (
	titleMetric  = &metrics.SorensenDice{CaseSensitive: false, NgramSize: 2}
	artistMetric = &metrics.JaroWinkler{CaseSensitive: false}
)

// Scored is a candidate with its similarity scores.
type Scored struct {
	Candidate   catalog.Candidate `json:"candidate"`
	Score       float64           `json:"score"`
	TitleScore  float64           `json:"title_score"`
	ArtistScore float64           `json:"artist_score"`
}

// entryKeys are the folded comparison forms of an entry, computed once per match.
type entryKeys struct {
	full   string
	base   string
	artist string
}

func keysFor(entry setlist.Entry) entryKeys {
	return entryKeys{
		full:   textutil.Key(entry.DisplayTitle()),
		base:   textutil.Key(entry.Title),
		artist: textutil.Key(entry.Artist),
	}
}

func score(keys entryKeys, c catalog.Candidate, weight float64) Scored {
	stem := textutil.Key(c.Stem)
	title := titleSimilarity(keys, stem)
	if tagTitle := textutil.Key(c.Tags.Title); tagTitle != "" {
		title = max(title, titleSimilarity(keys, tagTitle))
	}
	artist := artistSimilarity(keys.artist, textutil.Key(c.Tags.Artist), stem)
	return Scored{
		Candidate:   c,
		Score:       weight*title + (1-weight)*artist,
		TitleScore:  title,
		ArtistScore: artist,
	}
}

// titleSimilarity compares the entry title with a folded stem or tag title.
func titleSimilarity(keys entryKeys, target string) float64 {
	if keys.full == "" || target == "" {
		return 0
	}
	if containsWords(target, keys.full) {
		return fullTitleContained
	}
	best := max(
		strutil.Similarity(keys.full, target, titleMetric),
		textutil.TextSimilarity(keys.full, target),
	)
	if keys.base != keys.full && containsWords(target, keys.base) {
		best = max(best, baseTitleContained)
	}
	return best
}

// artistSimilarity compares against the Artist tag when present, otherwise
// looks for the artist inside the stem.
func artistSimilarity(artist, tagArtist, stem string) float64 {
	if artist == "" {
		return 0
	}
	if tagArtist != "" {
		if containsWords(tagArtist, artist) {
			return 1
		}
		return max(
			strutil.Similarity(artist, tagArtist, artistMetric),
			textutil.TextSimilarity(artist, tagArtist),
		)
	}
	if containsWords(stem, artist) {
		return 1
	}
	return textutil.TextSimilarity(artist, stem)
}

// containsWords reports whether needle occurs in haystack on word boundaries.
// Both arguments must already be Key-normalized.
func containsWords(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}
