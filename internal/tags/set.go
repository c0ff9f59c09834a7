package tags

import "strings"

// Set holds the managed tag fields. An empty string means the field is absent.
type Set struct {
	Title       string `json:"title,omitempty"`
	Artist      string `json:"artist,omitempty"`
	AlbumArtist string `json:"album_artist,omitempty"`
	Year        string `json:"year,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Comment     string `json:"comment,omitempty"`
	Album       string `json:"album,omitempty"`
}

// Normalized returns a copy with surrounding whitespace removed from every field.
func (s Set) Normalized() Set {
	return Set{
		Title:       strings.TrimSpace(s.Title),
		Artist:      strings.TrimSpace(s.Artist),
		AlbumArtist: strings.TrimSpace(s.AlbumArtist),
		Year:        strings.TrimSpace(s.Year),
		Genre:       strings.TrimSpace(s.Genre),
		Comment:     strings.TrimSpace(s.Comment),
		Album:       strings.TrimSpace(s.Album),
	}
}

// IsEmpty reports whether no field is present.
func (s Set) IsEmpty() bool {
	return s.Normalized() == Set{}
}
