package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"setprep/internal/logging"
	"setprep/internal/runlog"
	"setprep/internal/services"
	"setprep/internal/stage"
)

// StageRunner executes one stage for one track.
type StageRunner interface {
	Run(ctx context.Context, spec stage.Spec, track *stage.Track, req stage.Request) stage.Outcome
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithSink persists the log when the run ends.
func WithSink(sink runlog.Sink) Option {
	return func(o *Orchestrator) {
		o.sink = sink
	}
}

// WithClock overrides the time source (primarily for tests).
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// Orchestrator sequences tracks through the chain.
type Orchestrator struct {
	runner StageRunner
	logger *slog.Logger
	sink   runlog.Sink
	now    func() time.Time
	dryRun bool
}

// New constructs an Orchestrator.
func New(runner StageRunner, dryRun bool, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		runner: runner,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		now:    time.Now,
		dryRun: dryRun,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run processes tracks in order. Each track runs its whole chain before the
// next starts; a failed required stage skips the rest of that track's chain
// and the run moves on. Cancellation stops between stages and records the
// tracks not yet started as unprocessed. The log is persisted through the
// sink even when the run is cancelled; a persistence failure is returned
// with the log.
func (o *Orchestrator) Run(ctx context.Context, log *runlog.Log, tracks []*stage.Track, chain []stage.Spec) (*runlog.Log, error) {
	if log == nil {
		log = runlog.New(o.now(), o.dryRun)
	}
	log.DryRun = o.dryRun
	log.Stages = stage.Names(chain)

	owners := make(map[string]int)
	for i, track := range tracks {
		if ctx.Err() != nil {
			log.Cancelled = true
			for _, rest := range tracks[i:] {
				log.Tracks = append(log.Tracks, recordTrack(rest, nil, chain))
			}
			break
		}
		outcomes := o.runTrack(ctx, track, chain, owners)
		log.Tracks = append(log.Tracks, recordTrack(track, outcomes, chain))
	}
	if ctx.Err() != nil {
		log.Cancelled = true
	}
	log.Finish(o.now())

	summary := log.Summary()
	o.logger.Info("run finished",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String(logging.FieldRunID, log.RunID),
		logging.Bool("dry_run", log.DryRun),
		logging.Bool("cancelled", log.Cancelled),
		logging.Int("complete", summary.Complete),
		logging.Int("partial", summary.Partial),
		logging.Int("failed", summary.Failed),
		logging.Int("unprocessed", summary.Unprocessed),
		logging.Int("unresolved", summary.Unresolved),
	)

	if o.sink != nil {
		// Persist even after cancellation so the partial run is recorded.
		if err := o.sink.Persist(context.WithoutCancel(ctx), log); err != nil {
			return log, services.Wrap(services.ErrConfiguration, "pipeline", "persist run log", "", err)
		}
	}
	return log, nil
}

func (o *Orchestrator) runTrack(ctx context.Context, track *stage.Track, chain []stage.Spec, owners map[string]int) []stage.Outcome {
	outcomes := make([]stage.Outcome, 0, len(chain))
	input := track.Source
	pending := false
	aborted := ""

	for _, spec := range chain {
		if aborted != "" {
			outcomes = append(outcomes, stage.Skip(spec.Name, input, aborted))
			continue
		}
		if ctx.Err() != nil {
			aborted = stage.ReasonCancelled
			outcomes = append(outcomes, stage.Skip(spec.Name, input, aborted))
			continue
		}

		outcome := o.runner.Run(ctx, spec, track, stage.Request{
			Input:        input,
			InputPending: pending,
			DryRun:       o.dryRun,
			Claim:        claimer(owners, track),
		})
		outcomes = append(outcomes, outcome)

		switch outcome.Status {
		case stage.StatusSucceeded:
			input = outcome.Output
			track.Final = outcome.Output
		case stage.StatusDryRun:
			if outcome.Output != input {
				pending = true
			}
			input = outcome.Output
			track.Final = outcome.Output
		case stage.StatusFailed:
			if spec.Required {
				aborted = stage.ReasonUpstreamFailure
				logging.WarnWithContext(o.logger, "track aborted after required stage failure", "track_aborted",
					logging.String(logging.FieldTrack, track.Label()),
					logging.String(logging.FieldStage, spec.Name),
					logging.String("error_message", outcome.Error),
					logging.String(logging.FieldImpact, "remaining stages skipped for this track"),
				)
			}
		}
	}
	return outcomes
}

// claimer reserves output paths per track. An output already produced by an
// earlier track fails the later track's stage.
func claimer(owners map[string]int, track *stage.Track) func(string) error {
	return func(output string) error {
		if output == "" {
			return nil
		}
		if owner, ok := owners[output]; ok && owner != track.Index {
			return services.Wrap(services.ErrValidation, "pipeline", "claim output",
				fmt.Sprintf("output %s already produced by track %d", output, owner), nil)
		}
		owners[output] = track.Index
		return nil
	}
}

func recordTrack(track *stage.Track, outcomes []stage.Outcome, chain []stage.Spec) runlog.Track {
	if outcomes == nil {
		outcomes = []stage.Outcome{}
	}
	return runlog.Track{
		Index:    track.Index,
		Entry:    track.Entry,
		Source:   track.Source,
		Match:    runlog.MatchFromDecision(track.Decision),
		Tags:     track.Tags,
		Status:   runlog.StatusOf(outcomes, chain),
		Final:    track.Final,
		Analysis: track.Analysis,
		Outcomes: outcomes,
	}
}
