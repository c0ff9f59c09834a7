package stage

import (
	"setprep/internal/config"
	"setprep/internal/services/essentia"
	"setprep/internal/services/ffmpeg"
	"setprep/internal/services/rx10"
	"setprep/internal/tags"
)

// Tools groups the collaborators the default chain needs.
type Tools struct {
	Tags      tags.Writer
	Converter ffmpeg.Converter
	Processor rx10.Processor
	Extractor essentia.Extractor
}

// DefaultChain builds the tag, convert, premaster, analyze, comment chain.
// Tag and convert are required; the rest are optional. Stages listed in
// pipeline.skip_stages are marked skipped.
func DefaultChain(cfg *config.Config, tools Tools) []Spec {
	specs := []Spec{
		{Name: NameTag, Required: true, Step: TagStep{Writer: tools.Tags}},
		{Name: NameConvert, Required: true, Step: ConvertStep(tools.Converter)},
		{Name: NamePremaster, Step: PremasterStep(tools.Processor)},
		{Name: NameAnalyze, Step: AnalyzeStep{Extractor: tools.Extractor}},
		{Name: NameComment, Step: CommentStep{Writer: tools.Tags}},
	}
	for i := range specs {
		specs[i].Skip = cfg.SkipsStage(specs[i].Name)
	}
	return specs
}

// Names returns the stage names of specs in order.
func Names(specs []Spec) []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}
