package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// loadEnv reads .env files from the config directory and the working
// directory. Process environment wins over file values; the config
// directory wins over the working directory.
func loadEnv(configDir string) (map[string]string, error) {
	values := map[string]string{}
	candidates := []string{envFilename}
	if configDir != "" {
		candidates = append(candidates, filepath.Join(configDir, envFilename))
	}
	for _, candidate := range candidates {
		read, err := godotenv.Read(candidate)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", candidate, err)
		}
		for key, value := range read {
			values[key] = value
		}
	}
	for _, key := range []string{envFFmpegBinary, envRX10Binary, envEssentiaBinary, envSourceDir} {
		if value, ok := os.LookupEnv(key); ok {
			values[key] = value
		}
	}
	return values, nil
}

func (c *Config) applyEnv(env map[string]string) {
	set := func(dst *string, key string) {
		if value := strings.TrimSpace(env[key]); value != "" {
			*dst = value
		}
	}
	set(&c.Tools.FFmpeg, envFFmpegBinary)
	set(&c.Tools.RX10, envRX10Binary)
	set(&c.Tools.Essentia, envEssentiaBinary)
	set(&c.Paths.SourceDir, envSourceDir)
}
