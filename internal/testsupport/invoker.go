package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"setprep/internal/services"
)

// Invocation records one call made through a FakeInvoker.
type Invocation struct {
	Binary string
	Args   []string
}

// FakeInvoker is a services.Invoker that records calls and answers them with
// Respond. A nil Respond succeeds and, when WriteOutput is set, writes a
// non-empty file at the last argument.
type FakeInvoker struct {
	Respond     func(binary string, args []string) services.InvokeResult
	WriteOutput bool

	mu    sync.Mutex
	calls []Invocation
}

// Invoke implements services.Invoker.
func (f *FakeInvoker) Invoke(ctx context.Context, binary string, args []string) services.InvokeResult {
	f.mu.Lock()
	f.calls = append(f.calls, Invocation{Binary: binary, Args: append([]string(nil), args...)})
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return services.InvokeResult{ExitCode: -1, Err: err}
	}
	if f.Respond != nil {
		return f.Respond(binary, args)
	}
	if f.WriteOutput && len(args) > 0 {
		out := args[len(args)-1]
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return services.InvokeResult{ExitCode: -1, Err: err}
		}
		if err := os.WriteFile(out, []byte("output"), 0o644); err != nil {
			return services.InvokeResult{ExitCode: -1, Err: err}
		}
	}
	return services.InvokeResult{}
}

// Calls returns a copy of the recorded invocations.
func (f *FakeInvoker) Calls() []Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Invocation(nil), f.calls...)
}
