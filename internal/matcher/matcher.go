package matcher

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"setprep/internal/catalog"
	"setprep/internal/logging"
	"setprep/internal/setlist"
)

// Status classifies a match outcome.
type Status string

const (
	StatusMatched   Status = "matched"
	StatusAmbiguous Status = "ambiguous"
	StatusNotFound  Status = "not_found"
)

// scoreEpsilon absorbs float noise when comparing scores against margins.
const scoreEpsilon = 1e-9

// Result is the outcome of matching one entry.
type Result struct {
	Status Status `json:"status"`
	// Chosen is set only for StatusMatched.
	Chosen *catalog.Candidate `json:"chosen,omitempty"`
	// Score is the top candidate's score, or 0 without candidates.
	Score float64 `json:"score"`
	// Alternatives are ranked candidates offered for StatusAmbiguous.
	Alternatives []Scored `json:"alternatives,omitempty"`
	Reason       string   `json:"reason"`
}

// Matcher scores candidates against set-list entries.
type Matcher struct {
	policy Policy
	logger *slog.Logger
}

// New constructs a Matcher.
func New(policy Policy, logger *slog.Logger) *Matcher {
	return &Matcher{
		policy: policy.normalized(),
		logger: logging.NewComponentLogger(logger, "matcher"),
	}
}

// Policy returns the effective thresholds.
func (m *Matcher) Policy() Policy {
	return m.policy
}

// Rank scores every candidate and orders them by score descending, then
// path ascending.
func (m *Matcher) Rank(entry setlist.Entry, candidates []catalog.Candidate) []Scored {
	keys := keysFor(entry)
	ranked := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, score(keys, c, m.policy.TitleWeight))
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Candidate.Path < ranked[j].Candidate.Path
	})
	return ranked
}

// Match classifies the best candidates for entry. The same entry and
// candidates always produce the same Result.
//
//   - No candidate at or above FloorScore: NotFound.
//   - Two or more candidates within TieMargin of the top: Ambiguous.
//   - A unique top at or above MatchThreshold: Matched.
//   - Otherwise Ambiguous, including a lone candidate above the floor.
func (m *Matcher) Match(ctx context.Context, entry setlist.Entry, candidates []catalog.Candidate) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	ranked := m.Rank(entry, candidates)
	result := m.classify(ranked)

	attrs := logging.DecisionAttrs("match", string(result.Status), result.Reason)
	attrs = append(attrs,
		logging.String(logging.FieldEventType, "match_decision"),
		logging.String("entry", entry.String()),
		logging.Float64("score", result.Score),
		logging.Int("candidates", len(candidates)),
	)
	if result.Chosen != nil {
		attrs = append(attrs, logging.String("chosen", result.Chosen.Path))
	}
	m.logger.Debug("match evaluated", logging.Args(attrs...)...)
	return result, nil
}

func (m *Matcher) classify(ranked []Scored) Result {
	p := m.policy
	if len(ranked) == 0 {
		return Result{Status: StatusNotFound, Reason: "no candidates"}
	}
	top := ranked[0]
	if top.Score+scoreEpsilon < p.FloorScore {
		return Result{
			Status: StatusNotFound,
			Score:  top.Score,
			Reason: fmt.Sprintf("best score %.2f below floor %.2f", top.Score, p.FloorScore),
		}
	}

	above := 0
	ties := 0
	for _, s := range ranked {
		if s.Score+scoreEpsilon < p.FloorScore {
			break
		}
		above++
		if top.Score-s.Score <= p.TieMargin+scoreEpsilon {
			ties++
		}
	}

	switch {
	case ties >= 2:
		return Result{
			Status:       StatusAmbiguous,
			Score:        top.Score,
			Alternatives: alternatives(ranked[:above], max(ties, 2), p.MaxAlternatives),
			Reason:       fmt.Sprintf("%d candidates within %.2f of best score %.2f", ties, p.TieMargin, top.Score),
		}
	case top.Score+scoreEpsilon >= p.MatchThreshold:
		chosen := top.Candidate
		return Result{
			Status: StatusMatched,
			Chosen: &chosen,
			Score:  top.Score,
			Reason: fmt.Sprintf("score %.2f meets threshold %.2f", top.Score, p.MatchThreshold),
		}
	default:
		return Result{
			Status:       StatusAmbiguous,
			Score:        top.Score,
			Alternatives: alternatives(ranked[:above], 2, p.MaxAlternatives),
			Reason:       fmt.Sprintf("best score %.2f below threshold %.2f with %d candidate(s) above floor", top.Score, p.MatchThreshold, above),
		}
	}
}

// alternatives returns at least minCount and at most max(minCount, limit)
// leading entries of ranked.
func alternatives(ranked []Scored, minCount, limit int) []Scored {
	n := max(minCount, limit)
	if n > len(ranked) {
		n = len(ranked)
	}
	return append([]Scored(nil), ranked[:n]...)
}
