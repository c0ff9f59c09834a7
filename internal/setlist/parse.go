package setlist

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Divider separates blocks in serialized set lists.
const Divider = "===================="

var (
	dividerPattern = regexp.MustCompile(`^={8,}$`)
	yearPattern    = regexp.MustCompile(`(?:^|[^0-9])((?:19|20)[0-9]{2})$`)
)

// Result holds the entries parsed from a set list and any blocks that could
// not be parsed.
type Result struct {
	Entries   []Entry
	Malformed []*MalformedEntryError
}

// Parse reads set-list text. Only read errors are returned as error;
// malformed blocks are reported in Result.Malformed.
//
// A block needs at least a title and an artist line. The third line is
// optional when the block is closed by a divider, a blank line, or the end
// of input. Without separators, every three lines form a block.
func Parse(r io.Reader) (Result, error) {
	var (
		result Result
		block  []string
		start  int
	)

	flush := func() {
		switch len(block) {
		case 0:
			return
		case 1:
			result.Malformed = append(result.Malformed, &MalformedEntryError{
				Line:   start,
				Lines:  append([]string(nil), block...),
				Reason: "block has a title but no artist line",
			})
		default:
			result.Entries = append(result.Entries, buildEntry(block, start))
		}
		block = block[:0]
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if line == "" || dividerPattern.MatchString(line) {
			flush()
			continue
		}
		if len(block) == 0 {
			start = lineNo
		}
		block = append(block, line)
		if len(block) == 3 {
			flush()
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("read set list: %w", err)
	}
	flush()
	return result, nil
}

// ParseString is Parse over an in-memory string.
func ParseString(text string) Result {
	result, _ := Parse(strings.NewReader(text))
	return result
}

func buildEntry(block []string, line int) Entry {
	title, version := splitVersion(block[0])
	entry := Entry{
		Title:   title,
		Version: version,
		Artist:  block[1],
		Line:    line,
	}
	if len(block) > 2 {
		entry.Label, entry.Year = ParseLabelYear(block[2])
	}
	return entry
}

// splitVersion splits a trailing parenthesized suffix off a title line.
// "Strobe (Original Mix)" yields "Strobe" and "Original Mix".
func splitVersion(line string) (string, string) {
	if !strings.HasSuffix(line, ")") {
		return line, ""
	}
	depth := 0
	for i := len(line) - 1; i >= 0; i-- {
		switch line[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				title := strings.TrimSpace(line[:i])
				version := strings.TrimSpace(line[i+1 : len(line)-1])
				if title == "" || version == "" {
					return line, ""
				}
				return title, version
			}
		}
	}
	return line, ""
}

// ParseLabelYear parses a "[label year]" line. Brackets are optional and
// either part may be absent; a trailing 19xx or 20xx token is the year.
func ParseLabelYear(line string) (string, int) {
	cleaned := strings.TrimSpace(line)
	if strings.HasPrefix(cleaned, "[") && strings.HasSuffix(cleaned, "]") {
		cleaned = strings.TrimSpace(cleaned[1 : len(cleaned)-1])
	}
	m := yearPattern.FindStringSubmatchIndex(cleaned)
	if m == nil {
		return cleaned, 0
	}
	year, err := strconv.Atoi(cleaned[m[2]:m[3]])
	if err != nil {
		return cleaned, 0
	}
	return strings.TrimSpace(cleaned[:m[2]]), year
}

// Format serializes entries in canonical block form with a divider between
// blocks. Parsing the output yields the same titles, versions, artists,
// labels, and years.
func Format(entries []Entry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString(Divider)
			b.WriteByte('\n')
		}
		b.WriteString(e.DisplayTitle())
		b.WriteByte('\n')
		b.WriteString(e.Artist)
		b.WriteByte('\n')
		if suffix := e.Suffix(); suffix != "" {
			b.WriteString(suffix)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
