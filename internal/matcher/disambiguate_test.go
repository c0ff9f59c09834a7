package matcher

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"setprep/internal/catalog"
	"setprep/internal/logging"
	"setprep/internal/setlist"
	"setprep/internal/tags"
)

func threeAlternatives() []Scored {
	return []Scored{
		{Candidate: catalog.NewCandidate("/src/one.mp3", tags.Set{}), Score: 0.8},
		{Candidate: catalog.NewCandidate("/src/two.mp3", tags.Set{}), Score: 0.79},
		{Candidate: catalog.NewCandidate("/src/three.mp3", tags.Set{}), Score: 0.6},
	}
}

func TestPromptSelections(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty line accepts first", input: "\n", want: "/src/one.mp3"},
		{name: "explicit choice", input: "2\n", want: "/src/two.mp3"},
		{name: "zero skips", input: "0\n", want: ""},
		{name: "end of input skips", input: "", want: ""},
		{name: "invalid then valid", input: "x\n9\n3\n", want: "/src/three.mp3"},
		{name: "choice without newline", input: "2", want: "/src/two.mp3"},
		{name: "invalid at end of input skips", input: "nope", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompt(strings.NewReader(tt.input), &out, 5)
			chosen, err := p.Choose(context.Background(), strobe(), threeAlternatives())
			if err != nil {
				t.Fatalf("Choose: %v", err)
			}
			got := ""
			if chosen != nil {
				got = chosen.Path
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
			if !strings.Contains(out.String(), "Uncertain match for Deadmau5 - Strobe (Original Mix)") {
				t.Fatalf("prompt missing header:\n%s", out.String())
			}
		})
	}
}

func TestPromptLimitsAlternatives(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompt(strings.NewReader("3\n1\n"), &out, 2)
	chosen, err := p.Choose(context.Background(), strobe(), threeAlternatives())
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if chosen == nil || chosen.Path != "/src/one.mp3" {
		t.Fatalf("expected out-of-range choice to be rejected, got %+v", chosen)
	}
	if strings.Contains(out.String(), "three.mp3") {
		t.Fatalf("expected third alternative hidden:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Invalid selection") {
		t.Fatalf("expected invalid selection notice:\n%s", out.String())
	}
}

func TestAutoPickAndAbandon(t *testing.T) {
	alts := threeAlternatives()
	chosen, err := AutoPick{}.Choose(context.Background(), strobe(), alts)
	if err != nil || chosen == nil || chosen.Path != "/src/one.mp3" {
		t.Fatalf("auto pick: %+v %v", chosen, err)
	}
	chosen, err = Abandon{}.Choose(context.Background(), strobe(), alts)
	if err != nil || chosen != nil {
		t.Fatalf("abandon: %+v %v", chosen, err)
	}
}

func tiedCandidates() []catalog.Candidate {
	return []catalog.Candidate{
		catalog.NewCandidate("/src/a/Deadmau5 - Strobe (Original Mix).mp3", tags.Set{}),
		catalog.NewCandidate("/src/b/Deadmau5 - Strobe (Original Mix).mp3", tags.Set{}),
	}
}

func TestResolverAmbiguityPolicies(t *testing.T) {
	tests := []struct {
		name       string
		d          Disambiguator
		wantMethod Method
		wantPath   string
		wantBy     string
	}{
		{name: "default auto pick", d: nil, wantMethod: MethodChosen, wantPath: "/src/a/Deadmau5 - Strobe (Original Mix).mp3", wantBy: "auto_pick"},
		{name: "abandon", d: Abandon{}, wantMethod: MethodAbandoned, wantBy: "abandon"},
		{name: "operator", d: NewPrompt(strings.NewReader("2\n"), &bytes.Buffer{}, 5), wantMethod: MethodChosen, wantPath: "/src/b/Deadmau5 - Strobe (Original Mix).mp3", wantBy: "operator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(newMatcher(), tt.d, logging.NewNop())
			decision, err := r.Resolve(context.Background(), strobe(), tiedCandidates())
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if decision.Result.Status != StatusAmbiguous {
				t.Fatalf("expected ambiguous result, got %s", decision.Result.Status)
			}
			if decision.Method != tt.wantMethod || decision.ChosenBy != tt.wantBy {
				t.Fatalf("got method=%s by=%s", decision.Method, decision.ChosenBy)
			}
			got := ""
			if decision.Chosen != nil {
				got = decision.Chosen.Path
			}
			if got != tt.wantPath {
				t.Fatalf("chosen %q, want %q", got, tt.wantPath)
			}
			if decision.Resolved() != (tt.wantPath != "") {
				t.Fatalf("Resolved() mismatch for %q", got)
			}
		})
	}
}

func TestResolverDoesNotReuseFiles(t *testing.T) {
	r := NewResolver(newMatcher(), AutoPick{}, logging.NewNop())
	candidates := []catalog.Candidate{
		catalog.NewCandidate("/src/Deadmau5 - Strobe (Original Mix).mp3", tags.Set{}),
	}
	first, err := r.Resolve(context.Background(), strobe(), candidates)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if first.Method != MethodConfident {
		t.Fatalf("expected confident match, got %s", first.Method)
	}
	second, err := r.Resolve(context.Background(), strobe(), candidates)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if second.Resolved() || second.Method != MethodNotFound {
		t.Fatalf("expected claimed file to be excluded, got %+v", second)
	}
	if _, ok := r.Claimed()[candidates[0].Path]; !ok || len(r.Claimed()) != 1 {
		t.Fatalf("unexpected claimed set %v", r.Claimed())
	}
}

type recordingDisambiguator struct {
	calls []int
	pick  bool
}

func (r *recordingDisambiguator) Choose(_ context.Context, _ setlist.Entry, alternatives []Scored) (*catalog.Candidate, error) {
	r.calls = append(r.calls, len(alternatives))
	if !r.pick || len(alternatives) == 0 {
		return nil, nil
	}
	chosen := alternatives[0].Candidate
	return &chosen, nil
}

func (r *recordingDisambiguator) Name() string { return "recording" }

func TestResolverConsultsDisambiguatorForWeakSoleCandidate(t *testing.T) {
	candidates := []catalog.Candidate{
		catalog.NewCandidate("/src/Avicii - Level Up.mp3", tags.Set{}),
	}
	for _, pick := range []bool{false, true} {
		d := &recordingDisambiguator{pick: pick}
		r := NewResolver(newMatcher(), d, logging.NewNop())
		decision, err := r.Resolve(context.Background(), levels(), candidates)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if len(d.calls) != 1 || d.calls[0] != 1 {
			t.Fatalf("pick=%v: expected one call with one alternative, got %v", pick, d.calls)
		}
		if pick {
			if decision.Method != MethodChosen || decision.Chosen == nil {
				t.Fatalf("expected chosen decision, got %+v", decision)
			}
			continue
		}
		if decision.Method != MethodAbandoned || decision.Resolved() {
			t.Fatalf("expected abandoned decision, got %+v", decision)
		}
	}
}

func TestPromptStopsWaitingOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	p := NewPrompt(pr, &bytes.Buffer{}, 5)

	ctx, cancel := context.WithCancel(context.Background())
	type outcome struct {
		chosen *catalog.Candidate
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		chosen, err := p.Choose(ctx, strobe(), threeAlternatives())
		done <- outcome{chosen, err}
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case got := <-done:
		if !errors.Is(got.err, context.Canceled) || got.chosen != nil {
			t.Fatalf("expected cancellation without a choice, got %+v %v", got.chosen, got.err)
		}
	case <-time.After(time.Second):
		t.Fatal("Choose still waiting after cancellation")
	}
	// A line typed after cancellation must not bind a file.
	go func() { _, _ = pw.Write([]byte("\n")) }()
	if chosen, err := p.Choose(ctx, strobe(), threeAlternatives()); err == nil || chosen != nil {
		t.Fatalf("expected cancelled context to refuse the late answer, got %+v %v", chosen, err)
	}
}
