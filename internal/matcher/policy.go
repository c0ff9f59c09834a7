package matcher

import "setprep/internal/config"

// Policy holds the thresholds used to classify match outcomes.
type Policy struct {
	// MatchThreshold is the score a unique top candidate needs to be
	// accepted without confirmation.
	MatchThreshold float64
	// FloorScore is the minimum score for a candidate to be considered at all.
	FloorScore float64
	// TieMargin is the score gap below which two candidates are equally good.
	TieMargin float64
	// TitleWeight is the share of the score taken by title similarity; the
	// rest comes from artist similarity.
	TitleWeight float64
	// MaxAlternatives caps the alternatives offered for an ambiguous match.
	MaxAlternatives int
}

// DefaultPolicy returns the default matching thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MatchThreshold:  0.85,
		FloorScore:      0.45,
		TieMargin:       0.03,
		TitleWeight:     0.75,
		MaxAlternatives: 5,
	}
}

// PolicyFromConfig builds a policy from the [matching] config section.
func PolicyFromConfig(cfg config.Matching) Policy {
	return Policy{
		MatchThreshold:  cfg.MatchThreshold,
		FloorScore:      cfg.FloorScore,
		TieMargin:       cfg.TieMargin,
		TitleWeight:     cfg.TitleWeight,
		MaxAlternatives: cfg.MaxAlternatives,
	}.normalized()
}

func (p Policy) normalized() Policy {
	d := DefaultPolicy()
	if p.MatchThreshold <= 0 || p.MatchThreshold > 1 {
		p.MatchThreshold = d.MatchThreshold
	}
	if p.FloorScore <= 0 || p.FloorScore > p.MatchThreshold {
		p.FloorScore = min(d.FloorScore, p.MatchThreshold)
	}
	if p.TieMargin < 0 || p.TieMargin >= 1 {
		p.TieMargin = d.TieMargin
	}
	if p.TitleWeight <= 0 || p.TitleWeight > 1 {
		p.TitleWeight = d.TitleWeight
	}
	if p.MaxAlternatives < 2 {
		p.MaxAlternatives = d.MaxAlternatives
	}
	return p
}
