package prompt

import (
	"bufio"
	"context"
	"io"
)

type lineResult struct {
	text string
	err  error
}

// Lines reads newline-terminated input on a background goroutine so a read
// can be abandoned when its context ends. A Lines is not safe for
// concurrent use.
type Lines struct {
	in      *bufio.Reader
	results chan lineResult
	pending bool
}

// NewLines wraps r.
func NewLines(r io.Reader) *Lines {
	return &Lines{in: bufio.NewReader(r), results: make(chan lineResult, 1)}
}

// Read returns the next line including its newline, with the same error
// semantics as bufio.Reader.ReadString. When ctx ends first Read returns
// ctx.Err(); the abandoned line is handed to the next call.
func (l *Lines) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !l.pending {
		l.pending = true
		go func() {
			text, err := l.in.ReadString('\n')
			l.results <- lineResult{text: text, err: err}
		}()
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-l.results:
		l.pending = false
		// A line racing with cancellation is dropped.
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return r.text, r.err
	}
}
