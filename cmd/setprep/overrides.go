package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"setprep/internal/config"
)

// matchFlags parameterize matching and are shared by run and match.
type matchFlags struct {
	sourceDir     string
	interactive   bool
	noInteractive bool
	ambiguous     string
}

func (f *matchFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.sourceDir, "source-dir", "", "Source library folder (overrides paths.source_dir)")
	flags.BoolVar(&f.interactive, "interactive", false, "Ask which file to use when a match is ambiguous")
	flags.BoolVar(&f.noInteractive, "no-interactive", false, "Never prompt; settle ambiguous matches by matching.ambiguous")
	flags.StringVar(&f.ambiguous, "ambiguous", "", "Non-interactive ambiguity policy (auto-pick or abandon)")
}

func (f *matchFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("interactive") && flags.Changed("no-interactive") {
		return fmt.Errorf("--interactive and --no-interactive are mutually exclusive")
	}
	if flags.Changed("source-dir") {
		path, err := config.ExpandPath(strings.TrimSpace(f.sourceDir))
		if err != nil {
			return fmt.Errorf("resolve --source-dir: %w", err)
		}
		cfg.Paths.SourceDir = path
	}
	if flags.Changed("interactive") {
		cfg.Matching.Interactive = f.interactive
	}
	if flags.Changed("no-interactive") {
		cfg.Matching.Interactive = !f.noInteractive
	}
	if flags.Changed("ambiguous") {
		cfg.Matching.Ambiguous = strings.ToLower(strings.TrimSpace(f.ambiguous))
	}
	return nil
}

// pipelineFlags parameterize the stage chain and its tools.
type pipelineFlags struct {
	dryRun       bool
	skipStages   []string
	maxTracks    int
	defaultGenre string
	album        string
	ffmpeg       string
	rx10         string
	rx10Preset   string
	essentia     string
}

func (f *pipelineFlags) register(flags *pflag.FlagSet) {
	flags.BoolVar(&f.dryRun, "dry-run", false, "Report what would happen without writing files")
	flags.IntVar(&f.maxTracks, "max-tracks", 0, "Process at most this many matched tracks (0 = all)")
	flags.StringVar(&f.defaultGenre, "default-genre", "", "Genre written when a file has none")
	flags.StringVar(&f.album, "album", "", "Album written to every track")
	f.registerTools(flags)
}

// registerTools registers only the stage and tool selection flags.
func (f *pipelineFlags) registerTools(flags *pflag.FlagSet) {
	flags.StringSliceVar(&f.skipStages, "skip-stage", nil, "Skip a stage (premaster, analyze, comment); repeatable")
	flags.StringVar(&f.ffmpeg, "ffmpeg", "", "Path to the ffmpeg binary")
	flags.StringVar(&f.rx10, "rx10", "", "Path to the RX 10 batch processor")
	flags.StringVar(&f.rx10Preset, "rx10-preset", "", "RX 10 preset name")
	flags.StringVar(&f.essentia, "essentia", "", "Path to the Essentia music extractor")
}

func (f *pipelineFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("dry-run") {
		cfg.Pipeline.DryRun = f.dryRun
	}
	if flags.Changed("skip-stage") {
		for _, s := range f.skipStages {
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" && !cfg.SkipsStage(s) {
				cfg.Pipeline.SkipStages = append(cfg.Pipeline.SkipStages, s)
			}
		}
	}
	if flags.Changed("max-tracks") {
		if f.maxTracks < 0 {
			return fmt.Errorf("--max-tracks must not be negative")
		}
		cfg.Pipeline.MaxTracks = f.maxTracks
	}
	if flags.Changed("default-genre") {
		cfg.Tagging.DefaultGenre = strings.TrimSpace(f.defaultGenre)
	}
	if flags.Changed("album") {
		cfg.Tagging.Album = strings.TrimSpace(f.album)
	}
	for name, dst := range map[string]*string{
		"ffmpeg":      &cfg.Tools.FFmpeg,
		"rx10":        &cfg.Tools.RX10,
		"rx10-preset": &cfg.Tools.RX10Preset,
		"essentia":    &cfg.Tools.Essentia,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, _ := flags.GetString(name)
		*dst = strings.TrimSpace(value)
	}
	return nil
}
