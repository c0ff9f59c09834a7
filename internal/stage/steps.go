package stage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"setprep/internal/analysis"
	"setprep/internal/services"
	"setprep/internal/services/essentia"
	"setprep/internal/services/ffmpeg"
	"setprep/internal/services/rx10"
	"setprep/internal/tags"
)

// TagStep writes the track's resolved tags onto its source file in place.
type TagStep struct {
	Writer tags.Writer
}

// Output implements Step.
func (s TagStep) Output(_ *Track, input string) string { return input }

// Execute implements Step.
func (s TagStep) Execute(_ context.Context, track *Track, input, _ string) error {
	if s.Writer == nil {
		return services.Wrap(services.ErrConfiguration, NameTag, "write tags", "no tag writer configured", nil)
	}
	if err := s.Writer.Write(input, track.Tags); err != nil {
		return services.Wrap(services.ErrExternalTool, NameTag, "write tags", "", err)
	}
	return nil
}

// ToolFunc runs an external tool from input to output.
type ToolFunc func(ctx context.Context, input, output string) error

// ToolStep runs an external tool that writes a new file into a work
// directory under the track's target folder.
type ToolStep struct {
	// Dir is the work directory name under Track.WorkDir.
	Dir string
	// Ext replaces the input extension when set.
	Ext string
	Run ToolFunc
}

// Output implements Step.
func (s ToolStep) Output(track *Track, input string) string {
	name := filepath.Base(input)
	if s.Ext != "" {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + s.Ext
	}
	return filepath.Join(track.WorkDir, s.Dir, name)
}

// Execute implements Step.
func (s ToolStep) Execute(ctx context.Context, track *Track, input, output string) error {
	if s.Run == nil {
		return services.Wrap(services.ErrConfiguration, s.Dir, "run tool", "no tool configured", nil)
	}
	if err := s.Run(ctx, input, output); err != nil {
		return err
	}
	track.Final = output
	return nil
}

// ConvertStep converts the source file to 24-bit AIFF under AIFF/.
func ConvertStep(c ffmpeg.Converter) ToolStep {
	step := ToolStep{Dir: ConvertedDir, Ext: ".aiff"}
	if c != nil {
		step.Run = c.Convert
	}
	return step
}

// PremasterStep renders the converted AIFF through RX 10 into aiffProcessed/.
func PremasterStep(p rx10.Processor) ToolStep {
	step := ToolStep{Dir: ProcessedDir}
	if p != nil {
		step.Run = p.Process
	}
	return step
}

// AnalyzeStep runs the feature extractor on the current file and stores the
// summary on the track. The extractor writes its JSON beside the file; the
// audio path is passed through to later stages.
type AnalyzeStep struct {
	Extractor essentia.Extractor
}

// Output implements Step.
func (s AnalyzeStep) Output(_ *Track, input string) string { return input }

// Execute implements Step.
func (s AnalyzeStep) Execute(ctx context.Context, track *Track, input, _ string) error {
	if s.Extractor == nil {
		return services.Wrap(services.ErrConfiguration, NameAnalyze, "extract", "no extractor configured", nil)
	}
	features := essentia.OutputPath(input)
	if err := s.Extractor.Extract(ctx, input, features); err != nil {
		return err
	}
	summary, err := analysis.SummarizeFile(features)
	if err != nil {
		return services.Wrap(services.ErrValidation, NameAnalyze, "summarize", "", err)
	}
	track.Analysis = summary
	return nil
}

// CommentStep writes the analysis summary into the comment tag of the
// current file. Without a summary from the analyze stage it summarizes
// whatever extractor output sits beside the file.
type CommentStep struct {
	Writer tags.Writer
}

// Output implements Step.
func (s CommentStep) Output(_ *Track, input string) string { return input }

// Execute implements Step.
func (s CommentStep) Execute(_ context.Context, track *Track, input, _ string) error {
	if s.Writer == nil {
		return services.Wrap(services.ErrConfiguration, NameComment, "write comment", "no tag writer configured", nil)
	}
	summary := track.Analysis
	if summary == "" {
		var err error
		summary, err = analysis.SummarizeFile(essentia.OutputPath(input))
		if err != nil {
			return services.Wrap(services.ErrValidation, NameComment, "summarize", "", err)
		}
		track.Analysis = summary
	}
	if err := s.Writer.WriteComment(input, summary); err != nil {
		return services.Wrap(services.ErrExternalTool, NameComment, "write comment", fmt.Sprintf("comment %q", summary), err)
	}
	track.Final = input
	return nil
}
