package stage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"setprep/internal/fileutil"
	"setprep/internal/logging"
	"setprep/internal/services"
)

// Stage names in chain order.
const (
	NameTag       = "tag"
	NameConvert   = "convert"
	NamePremaster = "premaster"
	NameAnalyze   = "analyze"
	NameComment   = "comment"
)

// Step performs the work of one stage.
type Step interface {
	// Output returns the path the step writes for input. In-place steps
	// return input.
	Output(track *Track, input string) string
	Execute(ctx context.Context, track *Track, input, output string) error
}

// Spec describes one stage in the chain.
type Spec struct {
	Name string
	// Required stages stop the track's chain when they fail.
	Required bool
	Skip     bool
	Step     Step
}

// Request carries the per-invocation inputs of a stage.
type Request struct {
	Input string
	// InputPending marks an input that an upstream dry-run stage would have
	// produced; it is not checked for existence.
	InputPending bool
	DryRun       bool
	// Claim reserves the output path for the track. A non-nil error fails the
	// stage before it runs.
	Claim func(output string) error
}

// Runner executes stages.
type Runner struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewRunner constructs a Runner.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{
		logger: logging.NewComponentLogger(logger, "stage"),
		now:    time.Now,
	}
}

// Run executes spec for track and reports the outcome.
func (r *Runner) Run(ctx context.Context, spec Spec, track *Track, req Request) Outcome {
	stageCtx := services.WithStage(services.WithTrack(ctx, track.Label()), spec.Name)
	logger := logging.WithContext(stageCtx, r.logger)

	if spec.Skip {
		logger.Info("stage skipped",
			logging.String(logging.FieldEventType, "stage_skipped"),
			logging.String("reason", ReasonConfigured),
		)
		return Skip(spec.Name, req.Input, ReasonConfigured)
	}
	if spec.Step == nil {
		return r.fail(logger, Outcome{Stage: spec.Name, Input: req.Input}, services.Wrap(services.ErrConfiguration, spec.Name, "run", "stage has no step", nil))
	}

	output := cleanPath(spec.Step.Output(track, req.Input))
	outcome := Outcome{Stage: spec.Name, Input: req.Input, Output: output}

	if !req.InputPending && !fileutil.Exists(req.Input) {
		return r.fail(logger, outcome, services.Wrap(services.ErrNotFound, spec.Name, "check input", "input file missing: "+req.Input, nil))
	}
	if req.Claim != nil {
		if err := req.Claim(output); err != nil {
			return r.fail(logger, outcome, err)
		}
	}

	if req.DryRun {
		outcome.Status = StatusDryRun
		logger.Info("stage planned",
			logging.String(logging.FieldEventType, "stage_dry_run"),
			logging.String("input", req.Input),
			logging.String("output", output),
		)
		return outcome
	}

	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("input", req.Input),
		logging.String("output", output),
	)
	start := r.now()
	err := spec.Step.Execute(stageCtx, track, req.Input, output)
	outcome.Duration = r.now().Sub(start)
	if err != nil {
		return r.fail(logger, outcome, err)
	}
	outcome.Status = StatusSucceeded
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("output", output),
		logging.Duration("duration", outcome.Duration),
	)
	return outcome
}

func (r *Runner) fail(logger *slog.Logger, outcome Outcome, err error) Outcome {
	outcome.Status = StatusFailed
	outcome.Error = strings.TrimSpace(err.Error())
	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("error_message", outcome.Error),
		logging.Error(err),
	)
	return outcome
}

func cleanPath(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Describe renders an outcome for operator-facing summaries.
func Describe(o Outcome) string {
	switch o.Status {
	case StatusFailed:
		return fmt.Sprintf("%s failed: %s", o.Stage, o.Error)
	case StatusSkipped:
		return fmt.Sprintf("%s skipped (%s)", o.Stage, o.Reason)
	default:
		return fmt.Sprintf("%s %s", o.Stage, o.Status)
	}
}
