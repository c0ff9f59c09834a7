package config

import (
	"errors"
	"fmt"
)

// Stage names accepted in pipeline.skip_stages.
var knownStages = map[string]struct{}{
	"tag":       {},
	"convert":   {},
	"premaster": {},
	"analyze":   {},
	"comment":   {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.SourceDir == "" {
		return errors.New("paths.source_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateTools() error {
	if c.Tools.FFmpeg == "" {
		return errors.New("tools.ffmpeg must be set")
	}
	if c.Tools.RX10 == "" {
		return errors.New("tools.rx10 must be set")
	}
	if c.Tools.Essentia == "" {
		return errors.New("tools.essentia must be set")
	}
	return nil
}

func (c *Config) validateMatching() error {
	m := c.Matching
	switch m.Ambiguous {
	case AmbiguousAutoPick, AmbiguousAbandon:
	default:
		return fmt.Errorf("matching.ambiguous must be %q or %q, got %q", AmbiguousAutoPick, AmbiguousAbandon, m.Ambiguous)
	}
	// The matcher treats zero thresholds and weights as unset.
	for _, r := range []struct {
		name  string
		value float64
	}{
		{"matching.match_threshold", m.MatchThreshold},
		{"matching.floor_score", m.FloorScore},
		{"matching.title_weight", m.TitleWeight},
	} {
		if r.value <= 0 || r.value > 1 {
			return fmt.Errorf("%s must be greater than 0 and at most 1, got %g", r.name, r.value)
		}
	}
	if m.TieMargin < 0 || m.TieMargin >= 1 {
		return fmt.Errorf("matching.tie_margin must be at least 0 and below 1, got %g", m.TieMargin)
	}
	if m.MaxAlternatives < 2 {
		return fmt.Errorf("matching.max_alternatives must be at least 2, got %d", m.MaxAlternatives)
	}
	if m.FloorScore > m.MatchThreshold {
		return errors.New("matching.floor_score must not exceed matching.match_threshold")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	for _, s := range c.Pipeline.SkipStages {
		if _, ok := knownStages[s]; !ok {
			return fmt.Errorf("pipeline.skip_stages: unknown stage %q", s)
		}
		if s == "tag" || s == "convert" {
			return fmt.Errorf("pipeline.skip_stages: stage %q is required and cannot be skipped", s)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
