package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"setprep/internal/catalog"
	"setprep/internal/config"
	"setprep/internal/logging"
	"setprep/internal/matcher"
	"setprep/internal/runlog"
	"setprep/internal/services"
	"setprep/internal/setlist"
	"setprep/internal/tags"
)

// TagStore reads and writes audio tags.
type TagStore interface {
	tags.Reader
	tags.Writer
}

// HistoryRecorder stores finished run logs.
type HistoryRecorder interface {
	Record(ctx context.Context, log *runlog.Log) error
}

// Option configures the manager.
type Option func(*Manager)

// WithDisambiguator sets how ambiguous matches are settled. The default
// follows matching.ambiguous.
func WithDisambiguator(d matcher.Disambiguator) Option {
	return func(m *Manager) {
		if d != nil {
			m.disambiguator = d
		}
	}
}

// WithFolderChooser sets how the target folder is picked when none is given.
func WithFolderChooser(c FolderChooser) Option {
	return func(m *Manager) {
		if c != nil {
			m.chooser = c
		}
	}
}

// WithInvoker injects the external tool invoker (primarily for tests).
func WithInvoker(inv services.Invoker) Option {
	return func(m *Manager) {
		if inv != nil {
			m.invoker = inv
		}
	}
}

// WithTagStore replaces the taglib-backed tag store.
func WithTagStore(store TagStore) Option {
	return func(m *Manager) {
		if store != nil {
			m.tags = store
		}
	}
}

// WithHistory records finished runs.
func WithHistory(h HistoryRecorder) Option {
	return func(m *Manager) {
		m.history = h
	}
}

// WithClock overrides the time source (primarily for tests).
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// Manager runs set preparations with one immutable configuration.
type Manager struct {
	cfg           *config.Config
	logger        *slog.Logger
	tags          TagStore
	disambiguator matcher.Disambiguator
	chooser       FolderChooser
	invoker       services.Invoker
	history       HistoryRecorder
	now           func() time.Time
}

// NewManager constructs a Manager.
func NewManager(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("workflow requires a config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "workflow"),
		chooser: SuggestedFolder{},
		invoker: services.ExecInvoker{},
		now:     time.Now,
	}
	m.tags = tags.NewStore(logger)
	m.disambiguator = defaultDisambiguator(cfg)
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func defaultDisambiguator(cfg *config.Config) matcher.Disambiguator {
	if cfg.Matching.Ambiguous == config.AmbiguousAbandon {
		return matcher.Abandon{}
	}
	return matcher.AutoPick{}
}

// SelectTarget returns the target folder: explicit when given, otherwise
// the folder picked among those under paths.set_root.
func (m *Manager) SelectTarget(ctx context.Context, explicit string) (string, error) {
	if explicit != "" {
		path, err := config.ExpandPath(explicit)
		if err != nil {
			return "", services.Wrap(services.ErrConfiguration, "workflow", "select target", "invalid target path", err)
		}
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			return "", services.Wrap(services.ErrNotFound, "workflow", "select target", "target folder not found: "+path, err)
		}
		return path, nil
	}

	root := m.cfg.Paths.SetRoot
	folders, err := setlist.ListSetFolders(root)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "workflow", "list set folders", root, err)
	}
	if len(folders) == 0 {
		return "", services.Wrap(services.ErrNotFound, "workflow", "list set folders", "no set folders under "+root, nil)
	}
	suggested := setlist.SuggestFolder(folders, m.now())
	chosen, err := m.chooser.ChooseFolder(ctx, folders, suggested)
	if err != nil {
		return "", err
	}
	m.logger.Info("target selected",
		logging.String(logging.FieldEventType, "target_selected"),
		logging.String("target", chosen.Path),
		logging.String("suggested", folders[suggested].Name),
	)
	return chosen.Path, nil
}

// Plan is the matching result for one target folder.
type Plan struct {
	Target     string
	SetFile    string
	Parsed     setlist.Result
	Candidates []catalog.Candidate
	Decisions  []matcher.Decision
	// Leftovers are source files no entry claimed.
	Leftovers []string
}

// Resolved returns the decisions bound to a file, in set order.
func (p *Plan) Resolved() []matcher.Decision {
	var out []matcher.Decision
	for _, d := range p.Decisions {
		if d.Resolved() {
			out = append(out, d)
		}
	}
	return out
}

// Unresolved returns the decisions without a file, in set order.
func (p *Plan) Unresolved() []matcher.Decision {
	var out []matcher.Decision
	for _, d := range p.Decisions {
		if !d.Resolved() {
			out = append(out, d)
		}
	}
	return out
}

// ParseSetFile locates and parses the set list inside target.
func (m *Manager) ParseSetFile(target string) (string, setlist.Result, error) {
	setFile, err := setlist.FindSetFile(target)
	if err != nil {
		return "", setlist.Result{}, services.Wrap(services.ErrNotFound, "workflow", "find set file", target, err)
	}
	f, err := os.Open(setFile)
	if err != nil {
		return "", setlist.Result{}, services.Wrap(services.ErrConfiguration, "workflow", "open set file", setFile, err)
	}
	defer f.Close()

	parsed, err := setlist.Parse(f)
	if err != nil {
		return "", setlist.Result{}, services.Wrap(services.ErrConfiguration, "workflow", "read set file", setFile, err)
	}
	for _, bad := range parsed.Malformed {
		logging.WarnWithContext(m.logger, "malformed set-list block", "setlist_malformed",
			logging.String("set_file", setFile),
			logging.Int("line", bad.Line),
			logging.String("reason", bad.Reason),
			logging.String(logging.FieldImpact, "block ignored"),
			logging.String(logging.FieldErrorHint, "each block needs a title line and an artist line"),
		)
	}
	m.logger.Info("set list parsed",
		logging.String(logging.FieldEventType, "setlist_parsed"),
		logging.String("set_file", setFile),
		logging.Int("entries", len(parsed.Entries)),
		logging.Int("malformed", len(parsed.Malformed)),
	)
	return setFile, parsed, nil
}

// Match parses the set list in target, scans the source library and
// resolves every entry in set order.
func (m *Manager) Match(ctx context.Context, target string) (*Plan, error) {
	setFile, parsed, err := m.ParseSetFile(target)
	if err != nil {
		return nil, err
	}

	scanner := catalog.NewScanner(m.tags, m.logger)
	candidates, err := scanner.Scan(ctx, m.cfg.Paths.SourceDir)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		logging.WarnWithContext(m.logger, "source library has no audio files", "catalog_empty",
			logging.String("source_dir", m.cfg.Paths.SourceDir),
			logging.String(logging.FieldImpact, "every entry will be unresolved"),
		)
	}

	resolver := matcher.NewResolver(matcher.New(matcher.PolicyFromConfig(m.cfg.Matching), m.logger), m.disambiguator, m.logger)
	plan := &Plan{Target: target, SetFile: setFile, Parsed: parsed, Candidates: candidates}
	for _, entry := range parsed.Entries {
		decision, err := resolver.Resolve(ctx, entry, candidates)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", entry.String(), err)
		}
		plan.Decisions = append(plan.Decisions, decision)
	}

	claimed := resolver.Claimed()
	for _, c := range candidates {
		if _, ok := claimed[c.Path]; !ok {
			plan.Leftovers = append(plan.Leftovers, c.Path)
		}
	}
	m.logger.Info("matching complete",
		logging.String(logging.FieldEventType, "match_complete"),
		logging.Int("entries", len(parsed.Entries)),
		logging.Int("matched", len(plan.Resolved())),
		logging.Int("unresolved", len(plan.Unresolved())),
		logging.Int("leftovers", len(plan.Leftovers)),
	)
	return plan, nil
}

func relativeTo(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
