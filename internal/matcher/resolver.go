package matcher

import (
	"context"
	"log/slog"

	"setprep/internal/catalog"
	"setprep/internal/logging"
	"setprep/internal/setlist"
)

// Method records how a decision was reached.
type Method string

const (
	MethodConfident Method = "confident"
	MethodChosen    Method = "chosen"
	MethodAbandoned Method = "abandoned"
	MethodNotFound  Method = "not_found"
)

// Decision is the final resolution of one entry.
type Decision struct {
	Entry  setlist.Entry      `json:"entry"`
	Result Result             `json:"result"`
	Chosen *catalog.Candidate `json:"chosen,omitempty"`
	Method Method             `json:"method"`
	// ChosenBy names the disambiguator that settled an ambiguous match.
	ChosenBy string `json:"chosen_by,omitempty"`
}

// Resolved reports whether the entry was bound to a file.
func (d Decision) Resolved() bool {
	return d.Chosen != nil
}

// Resolver matches entries in set order and settles ambiguity. A file
// claimed by one entry is not offered to later entries.
type Resolver struct {
	matcher       *Matcher
	disambiguator Disambiguator
	logger        *slog.Logger
	used          map[string]struct{}
}

// NewResolver constructs a Resolver. A nil disambiguator defaults to AutoPick.
func NewResolver(m *Matcher, d Disambiguator, logger *slog.Logger) *Resolver {
	if d == nil {
		d = AutoPick{}
	}
	return &Resolver{
		matcher:       m,
		disambiguator: d,
		logger:        logging.NewComponentLogger(logger, "matcher"),
		used:          make(map[string]struct{}),
	}
}

// Resolve matches entry against the candidates not yet claimed.
func (r *Resolver) Resolve(ctx context.Context, entry setlist.Entry, candidates []catalog.Candidate) (Decision, error) {
	available := make([]catalog.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, taken := r.used[c.Path]; !taken {
			available = append(available, c)
		}
	}

	result, err := r.matcher.Match(ctx, entry, available)
	if err != nil {
		return Decision{}, err
	}
	decision := Decision{Entry: entry, Result: result}

	switch result.Status {
	case StatusMatched:
		decision.Chosen = result.Chosen
		decision.Method = MethodConfident
	case StatusAmbiguous:
		chosen, err := r.disambiguator.Choose(ctx, entry, result.Alternatives)
		if err != nil {
			return Decision{}, err
		}
		decision.ChosenBy = r.disambiguator.Name()
		if chosen != nil {
			decision.Chosen = chosen
			decision.Method = MethodChosen
		} else {
			decision.Method = MethodAbandoned
		}
	default:
		decision.Method = MethodNotFound
	}

	if decision.Chosen != nil {
		r.used[decision.Chosen.Path] = struct{}{}
	}
	r.log(decision)
	return decision, nil
}

// Claimed returns the paths bound to entries so far.
func (r *Resolver) Claimed() map[string]struct{} {
	out := make(map[string]struct{}, len(r.used))
	for k := range r.used {
		out[k] = struct{}{}
	}
	return out
}

func (r *Resolver) log(d Decision) {
	attrs := logging.DecisionAttrs("match", string(d.Method), d.Result.Reason)
	attrs = append(attrs,
		logging.String(logging.FieldEventType, "match_decision"),
		logging.String("entry", d.Entry.String()),
		logging.String("status", string(d.Result.Status)),
		logging.Float64("score", d.Result.Score),
	)
	if d.ChosenBy != "" {
		attrs = append(attrs, logging.String("chosen_by", d.ChosenBy))
	}
	if d.Chosen != nil {
		attrs = append(attrs, logging.String("file", d.Chosen.Path))
		r.logger.Info("entry matched", logging.Args(attrs...)...)
		return
	}
	logging.WarnWithContext(r.logger, "entry unresolved", "match_unresolved",
		append(attrs,
			logging.String(logging.FieldImpact, "entry will be recorded without processing"),
			logging.String(logging.FieldErrorHint, "check the source library or rename the file to include the title"),
		)...)
}
