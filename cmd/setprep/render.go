package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"setprep/internal/deps"
	"setprep/internal/matcher"
	"setprep/internal/runlog"
	"setprep/internal/setlist"
	"setprep/internal/stage"
	"setprep/internal/workflow"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 3, 64)
}

func baseOrDash(path string) string {
	if path == "" {
		return "-"
	}
	return filepath.Base(path)
}

func renderEntries(parsed setlist.Result) string {
	rows := make([][]string, 0, len(parsed.Entries))
	for i, e := range parsed.Entries {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(e.Line),
			e.DisplayTitle(),
			e.Artist,
			e.Suffix(),
		})
	}
	return tableSpec{
		title:        "Set list",
		headers:      []string{"#", "Line", "Title", "Artist", "Label"},
		rows:         rows,
		rightAligned: []int{0, 1},
	}.render()
}

func renderMalformed(blocks []*setlist.MalformedEntryError) string {
	if len(blocks) == 0 {
		return ""
	}
	rows := make([][]string, 0, len(blocks))
	for _, b := range blocks {
		rows = append(rows, []string{strconv.Itoa(b.Line), strings.Join(b.Lines, " / "), b.Reason})
	}
	return tableSpec{
		title:        "Malformed blocks",
		headers:      []string{"Line", "Text", "Reason"},
		rows:         rows,
		rightAligned: []int{0},
	}.render()
}

func renderDecisions(decisions []matcher.Decision) string {
	rows := make([][]string, 0, len(decisions))
	for i, d := range decisions {
		file := "-"
		if d.Chosen != nil {
			file = filepath.Base(d.Chosen.Path)
		}
		result := string(d.Result.Status)
		if d.Method != "" && d.Result.Status == matcher.StatusAmbiguous {
			result = fmt.Sprintf("%s (%s)", result, d.Method)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			d.Entry.String(),
			result,
			formatScore(d.Result.Score),
			file,
		})
	}
	return tableSpec{
		title:        "Matches",
		headers:      []string{"#", "Entry", "Result", "Score", "File"},
		rows:         rows,
		rightAligned: []int{0, 3},
	}.render()
}

func printRunReport(out io.Writer, result *workflow.Result) {
	log := result.Log
	rows := make([][]string, 0, len(log.Tracks))
	for _, t := range log.Tracks {
		rows = append(rows, []string{
			strconv.Itoa(t.Index),
			t.Entry.String(),
			baseOrDash(t.Source),
			string(t.Status),
			baseOrDash(t.Final),
			trackNotes(t),
		})
	}
	summary := log.Summary()
	title := "Tracks"
	if log.DryRun {
		title = "Tracks (dry run)"
	}
	fmt.Fprintln(out, tableSpec{
		title:        title,
		headers:      []string{"#", "Entry", "Source", "Status", "Final", "Notes"},
		rows:         rows,
		rightAligned: []int{0},
		footer: []string{"", fmt.Sprintf("%d complete, %d partial, %d failed, %d unprocessed",
			summary.Complete, summary.Partial, summary.Failed, summary.Unprocessed)},
	}.render())

	if len(log.Unresolved) > 0 {
		fmt.Fprintln(out, renderUnresolved(log.Unresolved))
	}
	if summary.Malformed > 0 {
		fmt.Fprintf(out, "Malformed set-list blocks: %d\n", summary.Malformed)
	}
	if len(log.Leftovers) > 0 {
		fmt.Fprintf(out, "Source files not in the set: %d\n", len(log.Leftovers))
	}
	if log.Cancelled {
		fmt.Fprintln(out, "Run cancelled; remaining tracks were not processed.")
	}
	if result.ImportScript != "" {
		fmt.Fprintf(out, "iTunes import helper: %s\n", result.ImportScript)
	}
	fmt.Fprintf(out, "Run ID: %s\n", log.RunID)
}

// trackNotes describes the stages that failed or did not run after a failure.
func trackNotes(t runlog.Track) string {
	var notes []string
	for _, o := range t.Outcomes {
		if o.Status == stage.StatusFailed || (o.Status == stage.StatusSkipped && o.Reason != stage.ReasonConfigured) {
			notes = append(notes, stage.Describe(o))
		}
	}
	if len(notes) == 0 {
		return "-"
	}
	return strings.Join(notes, "; ")
}

func renderUnresolved(entries []runlog.Unresolved) string {
	rows := make([][]string, 0, len(entries))
	for _, u := range entries {
		score := "-"
		if u.Match != nil {
			score = formatScore(u.Match.Score)
		}
		rows = append(rows, []string{strconv.Itoa(u.Entry.Line), u.Entry.String(), u.Status, score, u.Reason})
	}
	return tableSpec{
		title:        "Unresolved",
		headers:      []string{"Line", "Entry", "Status", "Best score", "Reason"},
		rows:         rows,
		rightAligned: []int{0, 3},
	}.render()
}

var toolFlags = map[string]string{
	stage.NameConvert:   "--ffmpeg",
	stage.NamePremaster: "--rx10",
	stage.NameAnalyze:   "--essentia",
}

// printToolHints explains how to get past a missing-tool failure.
func printToolHints(w io.Writer, err error) {
	missing, ok := deps.AsToolUnavailable(err)
	if !ok {
		return
	}
	for _, m := range missing.Missing {
		hint := fmt.Sprintf("install it or pass %s with its path", toolFlags[m.Stage])
		if m.Stage != stage.NameConvert {
			hint += fmt.Sprintf(", or add --skip-stage %s", m.Stage)
		}
		fmt.Fprintf(w, "%s (%s stage): %s; %s\n", m.Name, m.Stage, m.Detail, hint)
	}
}
