package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"setprep/internal/logging"
	"setprep/internal/matcher"
	"setprep/internal/runlog"
	"setprep/internal/setlist"
	"setprep/internal/stage"
	"setprep/internal/testsupport"
)

// copyStep copies its input into dir under the track's work folder, failing
// for sources listed in failFor.
type copyStep struct {
	dir     string
	failFor map[string]bool
	inputs  []string
}

func (s *copyStep) Output(track *stage.Track, input string) string {
	if s.dir == "" {
		return input
	}
	return filepath.Join(track.WorkDir, s.dir, filepath.Base(input))
}

func (s *copyStep) Execute(_ context.Context, track *stage.Track, input, output string) error {
	s.inputs = append(s.inputs, input)
	if s.failFor[filepath.Base(track.Source)] {
		return errors.New("tool exited with status 1")
	}
	if input == output {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}
	return os.WriteFile(output, []byte("data"), 0o644)
}

type memorySink struct {
	logs []*runlog.Log
	err  error
}

func (s *memorySink) Persist(_ context.Context, log *runlog.Log) error {
	s.logs = append(s.logs, log)
	return s.err
}

type fixture struct {
	workDir string
	tracks  []*stage.Track
}

func newFixture(t *testing.T, sources ...string) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{workDir: filepath.Join(root, "set")}
	for i, rel := range sources {
		path := filepath.Join(root, "source", rel)
		testsupport.WriteAudio(t, path)
		f.tracks = append(f.tracks, &stage.Track{
			Index:    i + 1,
			Total:    len(sources),
			Entry:    setlist.Entry{Title: rel, Artist: "Artist"},
			Source:   path,
			WorkDir:  f.workDir,
			Decision: matcher.Decision{Method: matcher.MethodConfident},
		})
	}
	return f
}

func newOrchestrator(dryRun bool, opts ...Option) *Orchestrator {
	opts = append([]Option{WithClock(func() time.Time { return time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC) })}, opts...)
	return New(stage.NewRunner(logging.NewNop()), dryRun, logging.NewNop(), opts...)
}

func TestRequiredFailureIsolatedToTrack(t *testing.T) {
	f := newFixture(t, "a/One.mp3", "b/Two.mp3", "c/Three.mp3")
	convert := &copyStep{dir: "AIFF", failFor: map[string]bool{"Two.mp3": true}}
	analyze := &copyStep{}
	chain := []stage.Spec{
		{Name: stage.NameConvert, Required: true, Step: convert},
		{Name: stage.NameAnalyze, Step: analyze},
	}
	sink := &memorySink{}
	log, err := newOrchestrator(false, WithSink(sink)).Run(context.Background(), nil, f.tracks, chain)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(log.Tracks) != 3 {
		t.Fatalf("expected all tracks recorded, got %d", len(log.Tracks))
	}
	second := log.Tracks[1]
	if second.Status != runlog.TrackFailed {
		t.Fatalf("expected failed track, got %s", second.Status)
	}
	if got := second.Outcomes[1]; got.Status != stage.StatusSkipped || got.Reason != stage.ReasonUpstreamFailure {
		t.Fatalf("expected upstream failure skip, got %+v", got)
	}
	for _, i := range []int{0, 2} {
		if log.Tracks[i].Status != runlog.TrackComplete {
			t.Fatalf("track %d: expected complete, got %s", i+1, log.Tracks[i].Status)
		}
	}
	if len(analyze.inputs) != 2 || filepath.Dir(analyze.inputs[0]) != filepath.Join(f.workDir, "AIFF") {
		t.Fatalf("analyze should receive converted outputs, got %v", analyze.inputs)
	}
	if len(sink.logs) != 1 || sink.logs[0] != log {
		t.Fatalf("expected log persisted once, got %d", len(sink.logs))
	}
}

func TestOptionalFailureContinuesChain(t *testing.T) {
	f := newFixture(t, "One.mp3")
	chain := []stage.Spec{
		{Name: stage.NameConvert, Required: true, Step: &copyStep{dir: "AIFF"}},
		{Name: stage.NamePremaster, Step: &copyStep{dir: "aiffProcessed", failFor: map[string]bool{"One.mp3": true}}},
		{Name: stage.NameComment, Step: &copyStep{}},
	}
	log, err := newOrchestrator(false).Run(context.Background(), nil, f.tracks, chain)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	track := log.Tracks[0]
	if track.Status != runlog.TrackPartial {
		t.Fatalf("expected partial, got %s", track.Status)
	}
	comment := track.Outcomes[2]
	if comment.Status != stage.StatusSucceeded || comment.Input != filepath.Join(f.workDir, "AIFF", "One.mp3") {
		t.Fatalf("comment should run on the last successful output, got %+v", comment)
	}
}

func TestSkippedStagePassesInputThrough(t *testing.T) {
	f := newFixture(t, "One.mp3")
	chain := []stage.Spec{
		{Name: stage.NameConvert, Required: true, Step: &copyStep{dir: "AIFF"}},
		{Name: stage.NamePremaster, Skip: true, Step: &copyStep{dir: "aiffProcessed"}},
		{Name: stage.NameComment, Step: &copyStep{}},
	}
	log, err := newOrchestrator(false).Run(context.Background(), nil, f.tracks, chain)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	converted := filepath.Join(f.workDir, "AIFF", "One.mp3")
	outcomes := log.Tracks[0].Outcomes
	if outcomes[1].Status != stage.StatusSkipped || outcomes[1].Output != converted {
		t.Fatalf("unexpected premaster outcome %+v", outcomes[1])
	}
	if outcomes[2].Input != converted || log.Tracks[0].Final != converted {
		t.Fatalf("expected converted file to flow through, got %+v final=%s", outcomes[2], log.Tracks[0].Final)
	}
}

func TestOutputCollisionFailsLaterTrack(t *testing.T) {
	f := newFixture(t, "a/Same.mp3", "b/Same.mp3")
	chain := []stage.Spec{{Name: stage.NameConvert, Required: true, Step: &copyStep{dir: "AIFF"}}}
	log, err := newOrchestrator(false).Run(context.Background(), nil, f.tracks, chain)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if log.Tracks[0].Status != runlog.TrackComplete {
		t.Fatalf("first track should own the output, got %s", log.Tracks[0].Status)
	}
	if log.Tracks[1].Status != runlog.TrackFailed || log.Tracks[1].Outcomes[0].Error == "" {
		t.Fatalf("second track should fail on collision, got %+v", log.Tracks[1])
	}
}

func TestUnresolvedEntriesHaveNoOutcomes(t *testing.T) {
	log := runlog.New(time.Now(), false)
	log.Unresolved = append(log.Unresolved, runlog.UnresolvedFromDecision(matcher.Decision{
		Entry:  setlist.Entry{Title: "Ghost Track", Artist: "Nobody"},
		Method: matcher.MethodNotFound,
		Result: matcher.Result{Status: matcher.StatusNotFound},
	}))
	chain := []stage.Spec{{Name: stage.NameConvert, Required: true, Step: &copyStep{dir: "AIFF"}}}
	got, err := newOrchestrator(false).Run(context.Background(), log, nil, chain)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got.Tracks) != 0 || len(got.Unresolved) != 1 || got.Unresolved[0].Status != runlog.StatusNoMatch {
		t.Fatalf("unexpected log %+v", got)
	}
}

func TestDryRunPropagatesPendingInputs(t *testing.T) {
	f := newFixture(t, "One.mp3")
	convert := &copyStep{dir: "AIFF"}
	premaster := &copyStep{dir: "aiffProcessed"}
	chain := []stage.Spec{
		{Name: stage.NameConvert, Required: true, Step: convert},
		{Name: stage.NamePremaster, Step: premaster},
	}
	log, err := newOrchestrator(true).Run(context.Background(), nil, f.tracks, chain)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, o := range log.Tracks[0].Outcomes {
		if o.Status != stage.StatusDryRun {
			t.Fatalf("expected dry run outcomes, got %+v", o)
		}
	}
	if len(convert.inputs)+len(premaster.inputs) != 0 {
		t.Fatal("dry run must not execute steps")
	}
	if _, err := os.Stat(f.workDir); !os.IsNotExist(err) {
		t.Fatalf("dry run created the work folder: %v", err)
	}
	if !log.DryRun {
		t.Fatal("expected dry-run flag on the log")
	}
}

func TestCancellationRecordsRemainingTracks(t *testing.T) {
	f := newFixture(t, "One.mp3", "Two.mp3")
	ctx, cancel := context.WithCancel(context.Background())
	chain := []stage.Spec{{Name: stage.NameConvert, Required: true, Step: cancelingStep{cancel: cancel}}}
	sink := &memorySink{}
	log, err := newOrchestrator(false, WithSink(sink)).Run(ctx, nil, f.tracks, chain)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !log.Cancelled {
		t.Fatal("expected cancelled log")
	}
	if log.Tracks[1].Status != runlog.TrackUnprocessed || len(log.Tracks[1].Outcomes) != 0 {
		t.Fatalf("expected second track unprocessed, got %+v", log.Tracks[1])
	}
	if len(sink.logs) != 1 {
		t.Fatal("cancelled run should still be persisted")
	}
}

type cancelingStep struct {
	cancel context.CancelFunc
}

func (s cancelingStep) Output(_ *stage.Track, input string) string { return input }

func (s cancelingStep) Execute(context.Context, *stage.Track, string, string) error {
	s.cancel()
	return nil
}

func TestSinkFailureReturned(t *testing.T) {
	f := newFixture(t, "One.mp3")
	chain := []stage.Spec{{Name: stage.NameConvert, Required: true, Step: &copyStep{dir: "AIFF"}}}
	sink := &memorySink{err: errors.New("disk full")}
	log, err := newOrchestrator(false, WithSink(sink)).Run(context.Background(), nil, f.tracks, chain)
	if err == nil || log == nil {
		t.Fatalf("expected log and error, got %v %v", log, err)
	}
}
