package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
)

// maxCapturedOutput bounds how much tool output is retained per invocation.
const maxCapturedOutput = 64 * 1024

// InvokeResult captures the outcome of one external tool invocation.
type InvokeResult struct {
	ExitCode int
	Output   string
	Err      error
}

// Failed reports whether the invocation did not complete successfully.
func (r InvokeResult) Failed() bool {
	return r.Err != nil || r.ExitCode != 0
}

// Tail returns the last n lines of captured output, trimmed.
func (r InvokeResult) Tail(n int) string {
	lines := strings.Split(strings.TrimSpace(r.Output), "\n")
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Invoker runs an external tool. Implementations must not panic on failure;
// failures are reported through InvokeResult.
type Invoker interface {
	Invoke(ctx context.Context, binary string, args []string) InvokeResult
}

// ExecInvoker runs tools with os/exec, capturing combined stdout and stderr.
type ExecInvoker struct{}

// Invoke executes binary with args and waits for it to exit.
func (ExecInvoker) Invoke(ctx context.Context, binary string, args []string) InvokeResult {
	cmd := exec.CommandContext(ctx, binary, args...)
	var buf limitedBuffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	result := InvokeResult{Output: buf.String(), Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	} else if err != nil {
		result.ExitCode = -1
	}
	return result
}

// failureTailLines bounds the tool output quoted in error messages.
const failureTailLines = 8

// ResultError converts a failed invocation into a classified error, or
// returns nil when the invocation succeeded. A binary that cannot be started
// is reported as ErrToolUnavailable.
func ResultError(stage, binary string, result InvokeResult) error {
	if !result.Failed() {
		return nil
	}
	operation := "run " + binary
	if errors.Is(result.Err, exec.ErrNotFound) || errors.Is(result.Err, fs.ErrNotExist) || errors.Is(result.Err, fs.ErrPermission) {
		return Wrap(ErrToolUnavailable, stage, operation, "binary could not be started", result.Err)
	}
	message := fmt.Sprintf("exit status %d", result.ExitCode)
	if tail := result.Tail(failureTailLines); tail != "" {
		message += ": " + tail
	}
	return Wrap(ErrExternalTool, stage, operation, message, result.Err)
}

// limitedBuffer keeps the most recent output once the cap is reached.
type limitedBuffer struct {
	buf bytes.Buffer
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	b.buf.Write(p)
	if over := b.buf.Len() - maxCapturedOutput; over > 0 {
		b.buf.Next(over)
	}
	return n, nil
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}
