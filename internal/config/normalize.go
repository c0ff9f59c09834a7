package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeMatching()
	c.normalizeTagging()
	c.normalizePipeline()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SetRoot, err = expandPath(strings.TrimSpace(c.Paths.SetRoot)); err != nil {
		return fmt.Errorf("paths.set_root: %w", err)
	}
	if c.Paths.SourceDir, err = expandPath(strings.TrimSpace(c.Paths.SourceDir)); err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

// normalizeTools expands tool paths that look like paths and keeps bare
// executable names for PATH lookup.
func (c *Config) normalizeTools() {
	expandTool := func(value, fallback string) string {
		value = strings.TrimSpace(value)
		if value == "" {
			return fallback
		}
		if strings.ContainsAny(value, `/\`) || strings.HasPrefix(value, "~") {
			if expanded, err := expandPath(value); err == nil {
				return expanded
			}
		}
		return value
	}
	c.Tools.FFmpeg = expandTool(c.Tools.FFmpeg, defaultFFmpegBinary)
	c.Tools.RX10 = expandTool(c.Tools.RX10, defaultRX10Binary)
	c.Tools.Essentia = expandTool(c.Tools.Essentia, defaultEssentiaBinary)
	c.Tools.RX10Preset = strings.TrimSpace(c.Tools.RX10Preset)
	if c.Tools.RX10Preset == "" {
		c.Tools.RX10Preset = defaultRX10Preset
	}
}

func (c *Config) normalizeMatching() {
	c.Matching.Ambiguous = strings.ToLower(strings.TrimSpace(c.Matching.Ambiguous))
	if c.Matching.Ambiguous == "" {
		c.Matching.Ambiguous = defaultAmbiguousPolicy
	}
	if c.Matching.MaxAlternatives == 0 {
		c.Matching.MaxAlternatives = defaultMaxAlternatives
	}
}

func (c *Config) normalizeTagging() {
	c.Tagging.DefaultGenre = strings.TrimSpace(c.Tagging.DefaultGenre)
	c.Tagging.Album = strings.TrimSpace(c.Tagging.Album)
}

func (c *Config) normalizePipeline() {
	stages := make([]string, 0, len(c.Pipeline.SkipStages))
	seen := map[string]struct{}{}
	for _, s := range c.Pipeline.SkipStages {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		stages = append(stages, s)
	}
	c.Pipeline.SkipStages = stages
	if c.Pipeline.MaxTracks < 0 {
		c.Pipeline.MaxTracks = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
