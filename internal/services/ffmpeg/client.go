package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"setprep/internal/fileutil"
	"setprep/internal/services"
)

// Codec is the PCM codec used for AIFF output.
const Codec = "pcm_s24be"

// Converter converts an audio file to AIFF.
type Converter interface {
	Convert(ctx context.Context, input, output string) error
}

// Option configures the client.
type Option func(*Client)

// WithInvoker injects a custom invoker (primarily for tests).
func WithInvoker(inv services.Invoker) Option {
	return func(c *Client) {
		if inv != nil {
			c.invoker = inv
		}
	}
}

// Client wraps ffmpeg CLI interactions.
type Client struct {
	binary  string
	invoker services.Invoker
}

// New constructs an ffmpeg client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	c := &Client{binary: binary, invoker: services.ExecInvoker{}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Args returns the ffmpeg arguments for converting input to output.
func Args(input, output string) []string {
	return []string{"-y", "-i", input, "-c:a", Codec, output}
}

// Convert writes input as AIFF to output, overwriting any existing file.
func (c *Client) Convert(ctx context.Context, input, output string) error {
	if input == "" || output == "" {
		return services.Wrap(services.ErrValidation, "convert", "ffmpeg", "input and output paths required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	result := c.invoker.Invoke(ctx, c.binary, Args(input, output))
	if err := services.ResultError("convert", "ffmpeg", result); err != nil {
		return err
	}
	if !fileutil.NonEmptyFile(output) {
		return services.Wrap(services.ErrExternalTool, "convert", "ffmpeg", "no output written to "+output, nil)
	}
	return nil
}
