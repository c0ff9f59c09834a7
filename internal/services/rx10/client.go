package rx10

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

// Processor applies the configured preset to a file.
type Processor interface {
	Process(ctx context.Context, input, output string) error
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

// Client wraps RX 10 headless invocations.
type Client struct {
	binary  string
	preset  string
	invoker services.Invoker
}

// New constructs an RX 10 client using preset for every file.
func New(binary, preset string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("rx10 binary required")
	}
	preset = strings.TrimSpace(preset)
	if preset == "" {
		return nil, errors.New("rx10 preset required")
	}
	c := &Client{binary: binary, preset: preset, invoker: services.ExecInvoker{}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Preset returns the preset applied by Process.
func (c *Client) Preset() string {
	return c.preset
}

// Args returns the headless arguments for processing input into output.
func (c *Client) Args(input, output string) []string {
	return []string{"--headless", "--preset", c.preset, "--input", input, "--output", output}
}

// Process renders input through the preset into output.
func (c *Client) Process(ctx context.Context, input, output string) error {
	if input == "" || output == "" {
		return services.Wrap(services.ErrValidation, "premaster", "rx10", "input and output paths required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	result := c.invoker.Invoke(ctx, c.binary, c.Args(input, output))
	if err := services.ResultError("premaster", "rx10", result); err != nil {
		return err
	}
	if !fileutil.NonEmptyFile(output) {
		return services.Wrap(services.ErrExternalTool, "premaster", "rx10", "no output written to "+output, nil)
	}
	return nil
}
