package config

const (
	defaultSetRoot         = "~/Music/Sets"
	defaultSourceDir       = "~/Music/Source"
	defaultLogDir          = "~/.local/share/setprep/logs"
	defaultStateDir        = "~/.local/share/setprep"
	defaultFFmpegBinary    = "ffmpeg"
	defaultRX10Binary      = "rx10"
	defaultRX10Preset      = "DJ Set Prep"
	defaultEssentiaBinary  = "essentia_streaming_extractor_music"
	defaultAmbiguousPolicy = AmbiguousAutoPick
	defaultMatchThreshold  = 0.85
	defaultFloorScore      = 0.45
	defaultTieMargin       = 0.03
	defaultTitleWeight     = 0.75
	defaultMaxAlternatives = 5
	defaultGenre           = "Electronic"
	defaultAlbum           = "DJ Set Prep"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultConfigPath      = "~/.config/setprep/config.toml"
	projectConfigFilename  = "setprep.toml"
	envFilename            = ".env"
	envFFmpegBinary        = "SETPREP_FFMPEG"
	envRX10Binary          = "SETPREP_RX10"
	envEssentiaBinary      = "SETPREP_ESSENTIA"
	envSourceDir           = "SETPREP_SOURCE_DIR"
)

// Ambiguous match policies for non-interactive runs.
const (
	AmbiguousAutoPick = "auto-pick"
	AmbiguousAbandon  = "abandon"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SetRoot:   defaultSetRoot,
			SourceDir: defaultSourceDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
		},
		Tools: Tools{
			FFmpeg:     defaultFFmpegBinary,
			RX10:       defaultRX10Binary,
			RX10Preset: defaultRX10Preset,
			Essentia:   defaultEssentiaBinary,
		},
		Matching: Matching{
			Interactive:     true,
			Ambiguous:       defaultAmbiguousPolicy,
			MatchThreshold:  defaultMatchThreshold,
			FloorScore:      defaultFloorScore,
			TieMargin:       defaultTieMargin,
			TitleWeight:     defaultTitleWeight,
			MaxAlternatives: defaultMaxAlternatives,
		},
		Tagging: Tagging{
			DefaultGenre: defaultGenre,
			Album:        defaultAlbum,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
