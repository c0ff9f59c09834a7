package stage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"setprep/internal/logging"
	"setprep/internal/setlist"
	"setprep/internal/testsupport"
)

type recordingStep struct {
	dir   string
	calls int
	err   error
}

func (s *recordingStep) Output(track *Track, input string) string {
	return filepath.Join(track.WorkDir, s.dir, filepath.Base(input))
}

func (s *recordingStep) Execute(_ context.Context, _ *Track, _, output string) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}
	return os.WriteFile(output, []byte("x"), 0o644)
}

func newTrack(t *testing.T) (*Track, string) {
	t.Helper()
	root := t.TempDir()
	source := filepath.Join(root, "source", "Strobe.mp3")
	testsupport.WriteAudio(t, source)
	return &Track{
		Index:   1,
		Total:   1,
		Entry:   setlist.Entry{Title: "Strobe", Artist: "Deadmau5"},
		Source:  source,
		WorkDir: filepath.Join(root, "set"),
	}, source
}

func fixedClock() func() time.Time {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	calls := 0
	return func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}
}

func newTestRunner() *Runner {
	r := NewRunner(logging.NewNop())
	r.now = fixedClock()
	return r
}

func TestRunSkippedPassesInputThrough(t *testing.T) {
	track, source := newTrack(t)
	step := &recordingStep{dir: "out"}
	outcome := newTestRunner().Run(context.Background(), Spec{Name: "premaster", Skip: true, Step: step}, track, Request{Input: source})
	if outcome.Status != StatusSkipped || outcome.Output != source || outcome.Reason != ReasonConfigured {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if step.calls != 0 {
		t.Fatal("skipped stage must not execute")
	}
}

func TestRunDryRunCreatesNoFiles(t *testing.T) {
	track, source := newTrack(t)
	step := &recordingStep{dir: "out"}
	outcome := newTestRunner().Run(context.Background(), Spec{Name: "convert", Step: step}, track, Request{Input: source, DryRun: true})
	if outcome.Status != StatusDryRun {
		t.Fatalf("expected dry run, got %+v", outcome)
	}
	if step.calls != 0 {
		t.Fatal("dry run must not execute the step")
	}
	if outcome.Output != filepath.Join(track.WorkDir, "out", "Strobe.mp3") {
		t.Fatalf("unexpected planned output %q", outcome.Output)
	}
	if _, err := os.Stat(track.WorkDir); !os.IsNotExist(err) {
		t.Fatalf("dry run created %s", track.WorkDir)
	}
}

func TestRunDryRunValidatesInput(t *testing.T) {
	track, _ := newTrack(t)
	missing := filepath.Join(t.TempDir(), "missing.aiff")
	step := &recordingStep{dir: "out"}
	runner := newTestRunner()

	outcome := runner.Run(context.Background(), Spec{Name: "premaster", Step: step}, track, Request{Input: missing, DryRun: true})
	if outcome.Status != StatusFailed || !strings.Contains(outcome.Error, "input file missing") {
		t.Fatalf("expected missing input failure, got %+v", outcome)
	}

	outcome = runner.Run(context.Background(), Spec{Name: "premaster", Step: step}, track, Request{Input: missing, InputPending: true, DryRun: true})
	if outcome.Status != StatusDryRun {
		t.Fatalf("expected pending input to be accepted, got %+v", outcome)
	}
}

func TestRunSucceeded(t *testing.T) {
	track, source := newTrack(t)
	step := &recordingStep{dir: "out"}
	outcome := newTestRunner().Run(context.Background(), Spec{Name: "convert", Step: step}, track, Request{Input: source})
	if outcome.Status != StatusSucceeded {
		t.Fatalf("expected success, got %+v", outcome)
	}
	if outcome.Duration != time.Second {
		t.Fatalf("expected recorded duration, got %s", outcome.Duration)
	}
	if _, err := os.Stat(outcome.Output); err != nil {
		t.Fatalf("expected output written: %v", err)
	}
}

func TestRunFailureIsReturnedAsOutcome(t *testing.T) {
	track, source := newTrack(t)
	step := &recordingStep{dir: "out", err: errors.New("exit status 1: boom")}
	outcome := newTestRunner().Run(context.Background(), Spec{Name: "convert", Required: true, Step: step}, track, Request{Input: source})
	if !outcome.Failed() || outcome.Error != "exit status 1: boom" {
		t.Fatalf("expected failed outcome, got %+v", outcome)
	}
}

func TestRunClaimRejection(t *testing.T) {
	track, source := newTrack(t)
	step := &recordingStep{dir: "out"}
	claim := func(string) error { return errors.New("output already produced by track 1/2") }
	outcome := newTestRunner().Run(context.Background(), Spec{Name: "convert", Step: step}, track, Request{Input: source, Claim: claim})
	if !outcome.Failed() || step.calls != 0 {
		t.Fatalf("expected claim failure before execution, got %+v (calls=%d)", outcome, step.calls)
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(Skip("premaster", "/a", ReasonUpstreamFailure)); got != "premaster skipped (upstream failure)" {
		t.Fatalf("Describe = %q", got)
	}
	if got := Describe(Outcome{Stage: "convert", Status: StatusFailed, Error: "boom"}); got != "convert failed: boom" {
		t.Fatalf("Describe = %q", got)
	}
}
