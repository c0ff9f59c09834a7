package essentia

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"setprep/internal/services"
)

// Extractor writes a feature JSON for an audio file.
type Extractor interface {
	Extract(ctx context.Context, input, output string) error
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

// Client wraps the streaming extractor CLI.
type Client struct {
	binary  string
	invoker services.Invoker
}

// New constructs an extractor client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("essentia binary required")
	}
	c := &Client{binary: binary, invoker: services.ExecInvoker{}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// OutputPath returns where the features for input are written: the input
// path with a .json extension.
func OutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".json"
}

// Extract runs the extractor on input, writing features to output. A run
// that succeeds without writing output is not an error; the summary then
// reports the features as missing.
func (c *Client) Extract(ctx context.Context, input, output string) error {
	if input == "" || output == "" {
		return services.Wrap(services.ErrValidation, "analyze", "essentia", "input and output paths required", nil)
	}
	result := c.invoker.Invoke(ctx, c.binary, []string{input, output})
	return services.ResultError("analyze", "essentia", result)
}
