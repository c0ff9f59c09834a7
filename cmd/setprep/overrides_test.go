package main

import (
	"testing"

	"github.com/spf13/cobra"

	"setprep/internal/config"
)

func parseOverrides(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	var mf matchFlags
	var pf pipelineFlags
	cmd := &cobra.Command{Use: "test"}
	mf.register(cmd.Flags())
	pf.register(cmd.Flags())
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg := config.Default()
	cfg.Paths.SourceDir = "/music/source"
	cfg.Paths.StateDir = "/state"
	return &cfg, applyOverrides(cmd, &cfg, mf.apply, pf.apply)
}

func TestOverridesOnlyChangedFlags(t *testing.T) {
	cfg, err := parseOverrides(t)
	if err != nil {
		t.Fatalf("applyOverrides: %v", err)
	}
	def := config.Default()
	if cfg.Pipeline.DryRun || cfg.Pipeline.MaxTracks != 0 || cfg.Tools.FFmpeg != def.Tools.FFmpeg {
		t.Fatalf("unchanged flags must not alter config: %+v", cfg.Pipeline)
	}
	if cfg.Matching.Interactive != def.Matching.Interactive {
		t.Fatalf("interactive changed without a flag")
	}
}

func TestOverridesApply(t *testing.T) {
	cfg, err := parseOverrides(t,
		"--dry-run",
		"--skip-stage", "premaster",
		"--skip-stage", "Analyze",
		"--max-tracks", "12",
		"--no-interactive",
		"--ambiguous", "Abandon",
		"--default-genre", "Techno",
		"--ffmpeg", "/opt/ffmpeg/bin/ffmpeg",
		"--rx10-preset", "Club",
		"--source-dir", "/crates",
	)
	if err != nil {
		t.Fatalf("applyOverrides: %v", err)
	}
	if !cfg.Pipeline.DryRun || cfg.Pipeline.MaxTracks != 12 {
		t.Fatalf("unexpected pipeline %+v", cfg.Pipeline)
	}
	if !cfg.SkipsStage("premaster") || !cfg.SkipsStage("analyze") || len(cfg.Pipeline.SkipStages) != 2 {
		t.Fatalf("unexpected skip stages %v", cfg.Pipeline.SkipStages)
	}
	if cfg.Matching.Interactive || cfg.Matching.Ambiguous != config.AmbiguousAbandon {
		t.Fatalf("unexpected matching %+v", cfg.Matching)
	}
	if cfg.Tagging.DefaultGenre != "Techno" {
		t.Fatalf("unexpected genre %q", cfg.Tagging.DefaultGenre)
	}
	if cfg.Tools.FFmpeg != "/opt/ffmpeg/bin/ffmpeg" || cfg.Tools.RX10Preset != "Club" {
		t.Fatalf("unexpected tools %+v", cfg.Tools)
	}
	if cfg.Paths.SourceDir != "/crates" {
		t.Fatalf("unexpected source dir %q", cfg.Paths.SourceDir)
	}
}

func TestOverridesRejectInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "conflicting interactive flags", args: []string{"--interactive", "--no-interactive"}},
		{name: "negative max tracks", args: []string{"--max-tracks", "-1"}},
		{name: "unknown ambiguity policy", args: []string{"--ambiguous", "guess"}},
		{name: "required stage skipped", args: []string{"--skip-stage", "tag"}},
		{name: "unknown stage", args: []string{"--skip-stage", "mastering"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseOverrides(t, tt.args...); err == nil {
				t.Fatalf("expected error for %v", tt.args)
			}
		})
	}
}
