package matcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"setprep/internal/catalog"
	"setprep/internal/prompt"
	"setprep/internal/setlist"
)

// Disambiguator settles an ambiguous match. A nil candidate with a nil error
// means "none of these".
type Disambiguator interface {
	Choose(ctx context.Context, entry setlist.Entry, alternatives []Scored) (*catalog.Candidate, error)
	// Name identifies the policy in logs and the run log.
	Name() string
}

// AutoPick takes the top-ranked alternative.
type AutoPick struct{}

// Choose returns the first alternative.
func (AutoPick) Choose(_ context.Context, _ setlist.Entry, alternatives []Scored) (*catalog.Candidate, error) {
	if len(alternatives) == 0 {
		return nil, nil
	}
	chosen := alternatives[0].Candidate
	return &chosen, nil
}

// Name implements Disambiguator.
func (AutoPick) Name() string { return "auto_pick" }

// Abandon leaves every ambiguous entry unresolved.
type Abandon struct{}

// Choose always returns no candidate.
func (Abandon) Choose(context.Context, setlist.Entry, []Scored) (*catalog.Candidate, error) {
	return nil, nil
}

// Name implements Disambiguator.
func (Abandon) Name() string { return "abandon" }

// Prompt asks the operator to pick an alternative. Entering 0 skips the
// entry; an empty line accepts the first alternative.
type Prompt struct {
	in  *prompt.Lines
	out io.Writer
	max int
}

// NewPrompt constructs an interactive disambiguator over in and out showing
// at most limit alternatives.
func NewPrompt(in io.Reader, out io.Writer, limit int) *Prompt {
	if limit <= 0 {
		limit = DefaultPolicy().MaxAlternatives
	}
	return &Prompt{in: prompt.NewLines(in), out: out, max: limit}
}

// Name implements Disambiguator.
func (p *Prompt) Name() string { return "operator" }

// Choose prints the alternatives and reads a selection, asking again on
// invalid input. End of input skips the entry.
func (p *Prompt) Choose(ctx context.Context, entry setlist.Entry, alternatives []Scored) (*catalog.Candidate, error) {
	if len(alternatives) == 0 {
		return nil, nil
	}
	shown := alternatives
	if len(shown) > p.max {
		shown = shown[:p.max]
	}

	fmt.Fprintf(p.out, "\nUncertain match for %s\n", entry.String())
	for i, alt := range shown {
		fmt.Fprintf(p.out, "  %d. %s (score=%.2f)\n", i+1, filepath.Base(alt.Candidate.Path), alt.Score)
	}
	fmt.Fprintln(p.out, "  0. Skip this entry")

	for {
		fmt.Fprint(p.out, "Selection [default 1]: ")
		line, err := p.in.Read(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			fmt.Fprintln(p.out)
			return nil, ctxErr
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read selection: %w", err)
		}
		choice := strings.TrimSpace(line)
		if errors.Is(err, io.EOF) && choice == "" {
			fmt.Fprintln(p.out)
			return nil, nil
		}
		if choice == "" {
			chosen := shown[0].Candidate
			return &chosen, nil
		}
		n, convErr := strconv.Atoi(choice)
		switch {
		case convErr != nil:
		case n == 0:
			return nil, nil
		case n >= 1 && n <= len(shown):
			chosen := shown[n-1].Candidate
			return &chosen, nil
		}
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		fmt.Fprintln(p.out, "Invalid selection. Enter a number shown above.")
	}
}
