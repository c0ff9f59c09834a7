package runlog

import (
	"time"

	"github.com/google/uuid"

	"setprep/internal/matcher"
	"setprep/internal/setlist"
	"setprep/internal/stage"
	"setprep/internal/tags"
)

// TrackStatus summarizes a processed track's outcomes.
type TrackStatus string

const (
	// TrackComplete means no stage failed.
	TrackComplete TrackStatus = "complete"
	// TrackPartial means only optional stages failed.
	TrackPartial TrackStatus = "partial"
	// TrackFailed means a required stage failed.
	TrackFailed TrackStatus = "failed"
	// TrackUnprocessed means the run stopped before the track started.
	TrackUnprocessed TrackStatus = "unprocessed"
)

// Unresolved statuses and reasons.
const (
	StatusNoMatch   = "not_found"
	StatusAbandoned = "abandoned"
	StatusTruncated = "truncated"

	ReasonNotFound  = "no matching file"
	ReasonAbandoned = "ambiguous match abandoned"
	ReasonTruncated = "beyond max-tracks limit"
)

const (
	defaultFileMode  = 0o644
	runFileTimestamp = "20060102-150405"
)

// Alternative is a ranked candidate offered for an ambiguous match.
type Alternative struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// Match records how an entry was bound to a file.
type Match struct {
	Status       matcher.Status `json:"status"`
	Method       matcher.Method `json:"method"`
	ChosenBy     string         `json:"chosen_by,omitempty"`
	Score        float64        `json:"score"`
	Reason       string         `json:"reason,omitempty"`
	Alternatives []Alternative  `json:"alternatives,omitempty"`
}

// MatchFromDecision converts a matcher decision.
func MatchFromDecision(d matcher.Decision) Match {
	m := Match{
		Status:   d.Result.Status,
		Method:   d.Method,
		ChosenBy: d.ChosenBy,
		Score:    d.Result.Score,
		Reason:   d.Result.Reason,
	}
	for _, alt := range d.Result.Alternatives {
		m.Alternatives = append(m.Alternatives, Alternative{Path: alt.Candidate.Path, Score: alt.Score})
	}
	return m
}

// Track is one processed track with its ordered stage outcomes.
type Track struct {
	Index    int             `json:"index"`
	Entry    setlist.Entry   `json:"entry"`
	Source   string          `json:"source"`
	Match    Match           `json:"match"`
	Tags     tags.Set        `json:"resolved_tags"`
	Status   TrackStatus     `json:"status"`
	Final    string          `json:"final,omitempty"`
	Analysis string          `json:"analysis,omitempty"`
	Outcomes []stage.Outcome `json:"outcomes"`
}

// Unresolved is an entry that was not processed. It never has outcomes.
type Unresolved struct {
	Entry  setlist.Entry `json:"entry"`
	Status string        `json:"status"`
	Reason string        `json:"reason"`
	Match  *Match        `json:"match,omitempty"`
}

// UnresolvedFromDecision records an entry the matcher could not bind.
func UnresolvedFromDecision(d matcher.Decision) Unresolved {
	m := MatchFromDecision(d)
	u := Unresolved{Entry: d.Entry, Status: StatusNoMatch, Reason: ReasonNotFound, Match: &m}
	if d.Method == matcher.MethodAbandoned {
		u.Status = StatusAbandoned
		u.Reason = ReasonAbandoned
	}
	return u
}

// Malformed is a set-list block the parser rejected.
type Malformed struct {
	Line   int      `json:"line"`
	Lines  []string `json:"lines"`
	Reason string   `json:"reason"`
}

// Log is the record of one run. Only the pipeline's goroutine appends to it.
type Log struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	DryRun     bool         `json:"dry_run"`
	Cancelled  bool         `json:"cancelled,omitempty"`
	Target     string       `json:"target,omitempty"`
	SetFile    string       `json:"set_file,omitempty"`
	SourceDir  string       `json:"source_dir,omitempty"`
	Stages     []string     `json:"stages"`
	Tracks     []Track      `json:"tracks"`
	Unresolved []Unresolved `json:"unresolved"`
	Malformed  []Malformed  `json:"malformed"`
	// Leftovers are source files no entry claimed.
	Leftovers []string `json:"leftovers"`
}

// New starts a log with a fresh run id.
func New(startedAt time.Time, dryRun bool) *Log {
	return &Log{
		RunID:      uuid.NewString(),
		StartedAt:  startedAt.UTC(),
		DryRun:     dryRun,
		Tracks:     []Track{},
		Unresolved: []Unresolved{},
		Malformed:  []Malformed{},
		Leftovers:  []string{},
	}
}

// AddMalformed records parser rejections.
func (l *Log) AddMalformed(errs []*setlist.MalformedEntryError) {
	for _, e := range errs {
		if e == nil {
			continue
		}
		l.Malformed = append(l.Malformed, Malformed{Line: e.Line, Lines: append([]string(nil), e.Lines...), Reason: e.Reason})
	}
}

// Finish stamps the finish time.
func (l *Log) Finish(at time.Time) {
	l.FinishedAt = at.UTC()
}

// Summary counts tracks by status.
type Summary struct {
	Complete    int `json:"complete"`
	Partial     int `json:"partial"`
	Failed      int `json:"failed"`
	Unprocessed int `json:"unprocessed"`
	Unresolved  int `json:"unresolved"`
	Malformed   int `json:"malformed"`
}

// Summary returns status counts.
func (l *Log) Summary() Summary {
	s := Summary{Unresolved: len(l.Unresolved), Malformed: len(l.Malformed)}
	for _, t := range l.Tracks {
		switch t.Status {
		case TrackComplete:
			s.Complete++
		case TrackPartial:
			s.Partial++
		case TrackFailed:
			s.Failed++
		case TrackUnprocessed:
			s.Unprocessed++
		}
	}
	return s
}

// StatusOf derives a track status from its outcomes and the chain's
// required flags.
func StatusOf(outcomes []stage.Outcome, chain []stage.Spec) TrackStatus {
	if len(outcomes) == 0 {
		return TrackUnprocessed
	}
	required := make(map[string]bool, len(chain))
	for _, spec := range chain {
		required[spec.Name] = spec.Required
	}
	status := TrackComplete
	for _, o := range outcomes {
		if o.Status == stage.StatusSkipped && o.Reason == stage.ReasonCancelled {
			status = TrackPartial
			continue
		}
		if !o.Failed() {
			continue
		}
		if required[o.Stage] {
			return TrackFailed
		}
		status = TrackPartial
	}
	return status
}

// FinalFiles returns the final output of every track that produced one and
// did not fail, in track order.
func (l *Log) FinalFiles() []string {
	var files []string
	for _, t := range l.Tracks {
		if t.Final == "" || t.Status == TrackFailed || t.Status == TrackUnprocessed {
			continue
		}
		files = append(files, t.Final)
	}
	return files
}
