package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"setprep/internal/services"
)

// Features are the extractor values used for the summary. Nil numbers and
// empty strings mean the extractor did not report the value.
type Features struct {
	BPM          *float64 `json:"bpm,omitempty"`
	Danceability *float64 `json:"danceability,omitempty"`
	Key          string   `json:"key,omitempty"`
	Scale        string   `json:"scale,omitempty"`
	ChordsKey    string   `json:"chords_key,omitempty"`
	ChordsScale  string   `json:"chords_scale,omitempty"`
}

// IsEmpty reports whether no value was reported.
func (f Features) IsEmpty() bool {
	return f.BPM == nil && f.Danceability == nil &&
		f.Key == "" && f.Scale == "" && f.ChordsKey == "" && f.ChordsScale == ""
}

type extractorOutput struct {
	Rhythm struct {
		BPM          looseNumber `json:"bpm"`
		Danceability looseNumber `json:"danceability"`
	} `json:"rhythm"`
	Tonal struct {
		KeyKey      looseString `json:"key_key"`
		KeyScale    looseString `json:"key_scale"`
		ChordsKey   looseString `json:"chords_key"`
		ChordsScale looseString `json:"chords_scale"`
	} `json:"tonal"`
}

// looseNumber accepts a JSON number or numeric string. Anything else leaves
// it unset.
type looseNumber struct {
	value *float64
}

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	n.value = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		var s string
		if json.Unmarshal(data, &s) != nil {
			return nil
		}
		parsed, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if perr != nil {
			return nil
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n.value = &f
	return nil
}

// looseString accepts a JSON string or number. Other shapes leave it empty.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	*s = ""
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = looseString(strings.TrimSpace(str))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = looseString(num.String())
	}
	return nil
}

// ParseFeatures decodes extractor JSON. Sections or values that are absent or
// have an unexpected shape are reported as missing.
func ParseFeatures(data []byte) (Features, error) {
	var out extractorOutput
	if err := json.Unmarshal(data, &out); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return Features{}, fmt.Errorf("decode extractor output: %w", err)
		}
		// Wrong container types (e.g. "rhythm": []) are treated as absent.
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return Features{}, fmt.Errorf("decode extractor output: %w", err)
		}
	}
	return Features{
		BPM:          out.Rhythm.BPM.value,
		Danceability: out.Rhythm.Danceability.value,
		Key:          string(out.Tonal.KeyKey),
		Scale:        string(out.Tonal.KeyScale),
		ChordsKey:    string(out.Tonal.ChordsKey),
		ChordsScale:  string(out.Tonal.ChordsScale),
	}, nil
}

// ReadFeatures loads extractor JSON from path. A missing file is reported
// with services.ErrNotFound.
func ReadFeatures(path string) (Features, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Features{}, services.Wrap(services.ErrNotFound, "analyze", "read features", "extractor output missing", err)
		}
		return Features{}, fmt.Errorf("read extractor output: %w", err)
	}
	return ParseFeatures(data)
}
