package analysis

import "strings"

// camelot maps scale then key name to Camelot wheel notation. Enharmonic
// spellings share a code.
var camelot = map[string]map[string]string{
	"major": {
		"B": "1B", "F#": "2B", "Gb": "2B", "Db": "3B", "C#": "3B",
		"Ab": "4B", "G#": "4B", "Eb": "5B", "D#": "5B", "Bb": "6B",
		"A#": "6B", "F": "7B", "C": "8B", "G": "9B", "D": "10B",
		"A": "11B", "E": "12B",
	},
	"minor": {
		"Ab": "1A", "G#": "1A", "Eb": "2A", "D#": "2A", "Bb": "3A",
		"A#": "3A", "F": "4A", "C": "5A", "G": "6A", "D": "7A",
		"A": "8A", "E": "9A", "B": "10A", "F#": "11A", "Gb": "11A",
		"C#": "12A", "Db": "12A",
	},
}

// Unknown is rendered for a key or chord estimate outside the Camelot table.
const Unknown = "unknown"

// Camelot returns the Camelot code for key and scale ("major" or "minor",
// any case). The second result is false when the pair is not in the table.
func Camelot(key, scale string) (string, bool) {
	byKey, ok := camelot[strings.ToLower(strings.TrimSpace(scale))]
	if !ok {
		return "", false
	}
	code, ok := byKey[strings.TrimSpace(key)]
	return code, ok
}

// camelotOrUnknown renders a key estimate. It returns "" when neither part
// was reported.
func camelotOrUnknown(key, scale string) string {
	if key == "" && scale == "" {
		return ""
	}
	if key != "" {
		if code, ok := Camelot(key, scale); ok {
			return code
		}
	}
	return Unknown
}
