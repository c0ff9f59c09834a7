package workflow

import (
	"context"
	"fmt"
	"strings"

	"setprep/internal/deps"
	"setprep/internal/logging"
	"setprep/internal/pipeline"
	"setprep/internal/preflight"
	"setprep/internal/runlog"
	"setprep/internal/services"
	"setprep/internal/services/essentia"
	"setprep/internal/services/ffmpeg"
	"setprep/internal/services/rx10"
	"setprep/internal/stage"
	"setprep/internal/tags"
)

// Result is the outcome of a run.
type Result struct {
	Log  *runlog.Log
	Plan *Plan
	// ImportScript is the helper written after a non-dry run.
	ImportScript string
}

// Run prepares the set in target. Run-level problems (missing tools,
// unreadable set list, inaccessible folders, a concurrent run) abort before
// any track is processed; per-track problems are recorded in the log.
func (m *Manager) Run(ctx context.Context, target string) (*Result, error) {
	dryRun := m.cfg.Pipeline.DryRun

	if err := m.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "ensure directories", "", err)
	}
	lock, err := acquireTargetLock(m.cfg.Paths.StateDir, target)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.release(); err != nil {
			m.logger.Warn("failed to release target lock", logging.Error(err))
		}
	}()

	if err := m.runPreflightChecks(target); err != nil {
		return nil, err
	}
	if err := m.verifyTools(); err != nil {
		return nil, err
	}

	log := runlog.New(m.now(), dryRun)
	ctx = services.WithRunID(ctx, log.RunID)
	logger := logging.WithContext(ctx, m.logger)
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("target", target),
		logging.String("source_dir", m.cfg.Paths.SourceDir),
		logging.Bool("dry_run", dryRun),
	)

	plan, err := m.Match(ctx, target)
	if err != nil {
		return nil, err
	}

	log.Target = target
	log.SetFile = plan.SetFile
	log.SourceDir = m.cfg.Paths.SourceDir
	log.AddMalformed(plan.Parsed.Malformed)
	log.Leftovers = append(log.Leftovers, plan.Leftovers...)
	for _, d := range plan.Unresolved() {
		log.Unresolved = append(log.Unresolved, runlog.UnresolvedFromDecision(d))
	}

	tracks := m.buildTracks(target, plan, log)
	chain, err := m.buildChain()
	if err != nil {
		return nil, err
	}

	orchestrator := pipeline.New(stage.NewRunner(m.logger), dryRun, m.logger,
		pipeline.WithSink(runlog.FileSink{TargetDir: target, RunsDir: m.cfg.RunsDir()}),
		pipeline.WithClock(m.now),
	)
	log, runErr := orchestrator.Run(ctx, log, tracks, chain)

	result := &Result{Log: log, Plan: plan}
	m.reportLeftovers(plan)
	if runErr == nil {
		result.ImportScript = m.writeImportScript(target, log)
	}
	m.recordHistory(ctx, log)
	if runErr != nil {
		return result, runErr
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// buildTracks resolves tags for every matched entry and applies the
// max-tracks limit. Entries past the limit are recorded as unresolved.
func (m *Manager) buildTracks(target string, plan *Plan, log *runlog.Log) []*stage.Track {
	resolved := plan.Resolved()
	if limit := m.cfg.Pipeline.MaxTracks; limit > 0 && len(resolved) > limit {
		for _, d := range resolved[limit:] {
			match := runlog.MatchFromDecision(d)
			log.Unresolved = append(log.Unresolved, runlog.Unresolved{
				Entry:  d.Entry,
				Status: runlog.StatusTruncated,
				Reason: runlog.ReasonTruncated,
				Match:  &match,
			})
		}
		m.logger.Info("track list truncated",
			logging.String(logging.FieldEventType, "tracks_truncated"),
			logging.Int("max_tracks", limit),
			logging.Int("matched", len(resolved)),
		)
		resolved = resolved[:limit]
	}

	opts := tags.Options{DefaultGenre: m.cfg.Tagging.DefaultGenre, Album: m.cfg.Tagging.Album}
	tracks := make([]*stage.Track, 0, len(resolved))
	for i, d := range resolved {
		track := &stage.Track{
			Index:    i + 1,
			Total:    len(resolved),
			Entry:    d.Entry,
			Decision: d,
			Source:   d.Chosen.Path,
			WorkDir:  target,
		}
		track.Tags = tags.Resolve(d.Entry, track.Stem(), d.Chosen.Tags, opts)
		tracks = append(tracks, track)
	}
	return tracks
}

// buildChain wires the external tool clients into the default chain. Clients
// for skipped stages are not constructed.
func (m *Manager) buildChain() ([]stage.Spec, error) {
	tools := stage.Tools{Tags: m.tags}
	if !m.cfg.SkipsStage(stage.NameConvert) {
		client, err := ffmpeg.New(m.cfg.Tools.FFmpeg, ffmpeg.WithInvoker(m.invoker))
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "workflow", "configure ffmpeg", "", err)
		}
		tools.Converter = client
	}
	if !m.cfg.SkipsStage(stage.NamePremaster) {
		client, err := rx10.New(m.cfg.Tools.RX10, m.cfg.Tools.RX10Preset, rx10.WithInvoker(m.invoker))
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "workflow", "configure rx10", "", err)
		}
		tools.Processor = client
	}
	if !m.cfg.SkipsStage(stage.NameAnalyze) {
		client, err := essentia.New(m.cfg.Tools.Essentia, essentia.WithInvoker(m.invoker))
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "workflow", "configure essentia", "", err)
		}
		tools.Extractor = client
	}
	return stage.DefaultChain(m.cfg, tools), nil
}

// runPreflightChecks validates folder access before anything is matched.
func (m *Manager) runPreflightChecks(target string) error {
	var failures []string
	for _, r := range preflight.RunAll(m.cfg, target) {
		if r.Passed {
			m.logger.Debug("preflight check passed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
				logging.String(logging.FieldEventType, "preflight_passed"),
			)
			continue
		}
		logging.ErrorWithContext(m.logger, "preflight check failed", "preflight_failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldErrorHint, "fix the reported path or permissions and rerun"),
		)
		failures = append(failures, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	if len(failures) > 0 {
		return services.Wrap(services.ErrConfiguration, "workflow", "preflight", strings.Join(failures, "; "), nil)
	}
	return nil
}

func (m *Manager) verifyTools() error {
	statuses, err := deps.Verify(m.cfg)
	for _, s := range statuses {
		if !s.Available && s.Optional {
			m.logger.Debug("optional tool unavailable",
				logging.String("tool", s.Name),
				logging.String("detail", s.Detail),
			)
		}
	}
	if err != nil {
		logging.ErrorWithContext(m.logger, "required tool unavailable", "tool_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install the tool, set its path under [tools], or skip its stage"),
		)
		return err
	}
	return nil
}

func (m *Manager) writeImportScript(target string, log *runlog.Log) string {
	files := log.FinalFiles()
	if log.DryRun {
		m.logger.Info("import script not written in dry run",
			logging.String(logging.FieldEventType, "import_script_skipped"),
			logging.Int("files", len(files)),
		)
		return ""
	}
	path, err := WriteImportScript(target, files)
	if err != nil {
		logging.WarnWithContext(m.logger, "import script not written", "import_script_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "import the processed files manually"),
		)
		return ""
	}
	m.logger.Info("import script written",
		logging.String(logging.FieldEventType, "import_script_written"),
		logging.String("path", path),
		logging.Int("files", len(files)),
	)
	return path
}

func (m *Manager) reportLeftovers(plan *Plan) {
	for _, path := range plan.Leftovers {
		m.logger.Debug("source file not in set",
			logging.String(logging.FieldEventType, "leftover_file"),
			logging.String("file", relativeTo(m.cfg.Paths.SourceDir, path)),
		)
	}
}

func (m *Manager) recordHistory(ctx context.Context, log *runlog.Log) {
	if m.history == nil || log == nil {
		return
	}
	if err := m.history.Record(context.WithoutCancel(ctx), log); err != nil {
		logging.WarnWithContext(m.logger, "run history not recorded", "history_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run missing from setprep history"),
		)
	}
}
