package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const consoleTimeLayout = "2006-01-02 15:04:05"

// headerKeys are folded into the console header instead of being listed.
var headerKeys = map[string]struct{}{
	FieldComponent: {},
	FieldTrack:     {},
	FieldStage:     {},
}

// quietKeys are only listed at debug level.
var quietKeys = map[string]struct{}{
	FieldRunID:        {},
	FieldEventType:    {},
	FieldDecisionType: {},
}

// footnoteKeys are printed on their own indented lines after the header.
var footnoteKeys = []string{FieldErrorHint, FieldImpact, FieldAlert}

// FormatSubject builds the track/stage subject shown in console headers.
func FormatSubject(track, stage string) string {
	track = strings.TrimSpace(track)
	stage = strings.TrimSpace(stage)
	switch {
	case track != "" && stage != "":
		return "Track " + track + " (" + stage + ")"
	case track != "":
		return "Track " + track
	default:
		return stage
	}
}

// consoleHandler renders one line per record with the attributes appended as
// key=value pairs, followed by hint and impact lines when present.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     *slog.LevelVar
	addSource bool
	prefix    string
	preset    []field
}

type field struct {
	key   string
	value slog.Value
}

func newConsoleHandler(w io.Writer, level *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.preset = append([]field(nil), h.preset...)
	for _, a := range attrs {
		next.preset = appendField(next.preset, h.prefix, a)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := append([]field(nil), h.preset...)
	record.Attrs(func(a slog.Attr) bool {
		fields = appendField(fields, h.prefix, a)
		return true
	})
	fields = lastWins(fields)

	lookup := make(map[string]slog.Value, len(fields))
	for _, f := range fields {
		lookup[f.key] = f.value
	}
	debug := record.Level < slog.LevelInfo

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var buf bytes.Buffer
	buf.WriteString(ts.In(time.Local).Format(consoleTimeLayout))
	buf.WriteByte(' ')
	buf.WriteString(levelName(record.Level))
	if component := plain(lookup[FieldComponent]); component != "" {
		fmt.Fprintf(&buf, " [%s]", component)
	}
	if subject := FormatSubject(plain(lookup[FieldTrack]), plain(lookup[FieldStage])); subject != "" {
		buf.WriteByte(' ')
		buf.WriteString(subject)
	}
	buf.WriteString(" – ")
	if msg := strings.TrimSpace(record.Message); msg != "" {
		buf.WriteString(msg)
	} else {
		buf.WriteString("(no message)")
	}

	for _, f := range fields {
		if _, ok := headerKeys[f.key]; ok {
			continue
		}
		if _, ok := quietKeys[f.key]; ok && !debug {
			continue
		}
		if isFootnote(f.key) {
			continue
		}
		buf.WriteByte(' ')
		buf.WriteString(f.key)
		buf.WriteByte('=')
		buf.WriteString(quoted(f.value))
	}
	if h.addSource && record.PC != 0 {
		if src := record.Source(); src != nil && src.File != "" {
			fmt.Fprintf(&buf, " (%s:%d)", filepath.Base(src.File), src.Line)
		}
	}
	buf.WriteByte('\n')

	for _, key := range footnoteKeys {
		if v, ok := lookup[key]; ok {
			if text := plain(v); text != "" {
				fmt.Fprintf(&buf, "    %s: %s\n", strings.ReplaceAll(key, "_", " "), text)
			}
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func appendField(dst []field, prefix string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner = prefix + a.Key + "."
		}
		for _, g := range a.Value.Group() {
			dst = appendField(dst, inner, g)
		}
		return dst
	}
	if a.Key == "" {
		return dst
	}
	return append(dst, field{key: prefix + a.Key, value: a.Value})
}

// lastWins drops earlier duplicates of a key, keeping the first position.
func lastWins(fields []field) []field {
	index := make(map[string]int, len(fields))
	out := fields[:0:0]
	for _, f := range fields {
		if i, ok := index[f.key]; ok {
			out[i].value = f.value
			continue
		}
		index[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func isFootnote(key string) bool {
	for _, k := range footnoteKeys {
		if k == key {
			return true
		}
	}
	return false
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// plain renders a value without quoting.
func plain(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().In(time.Local).Format(consoleTimeLayout)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindAny:
		if v.Any() == nil {
			return ""
		}
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

// quoted renders a value, quoting strings that would be ambiguous inline.
func quoted(v slog.Value) string {
	s := plain(v)
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
