package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"setprep/internal/prompt"
	"setprep/internal/setlist"
)

// FolderChooser picks the target set folder from the candidates under the
// set root.
type FolderChooser interface {
	ChooseFolder(ctx context.Context, folders []setlist.Folder, suggested int) (setlist.Folder, error)
}

// ErrNoFolderChosen is returned when the operator declines every folder.
var ErrNoFolderChosen = errors.New("no set folder chosen")

// SuggestedFolder accepts the suggested folder without asking.
type SuggestedFolder struct{}

// ChooseFolder implements FolderChooser.
func (SuggestedFolder) ChooseFolder(_ context.Context, folders []setlist.Folder, suggested int) (setlist.Folder, error) {
	if suggested < 0 || suggested >= len(folders) {
		return setlist.Folder{}, ErrNoFolderChosen
	}
	return folders[suggested], nil
}

// FolderPrompt lists the folders and reads a choice. An empty line accepts
// the suggestion; 0 or end of input cancels.
type FolderPrompt struct {
	in  *prompt.Lines
	out io.Writer
}

// NewFolderPrompt constructs an interactive folder chooser.
func NewFolderPrompt(in io.Reader, out io.Writer) *FolderPrompt {
	return &FolderPrompt{in: prompt.NewLines(in), out: out}
}

// ChooseFolder implements FolderChooser.
func (p *FolderPrompt) ChooseFolder(ctx context.Context, folders []setlist.Folder, suggested int) (setlist.Folder, error) {
	if len(folders) == 0 {
		return setlist.Folder{}, ErrNoFolderChosen
	}
	if suggested < 0 || suggested >= len(folders) {
		suggested = 0
	}
	fmt.Fprintln(p.out, "Set folders:")
	for i, f := range folders {
		marker := " "
		if i == suggested {
			marker = "*"
		}
		fmt.Fprintf(p.out, " %s %d. %s\n", marker, i+1, f.Name)
	}
	for {
		fmt.Fprintf(p.out, "Folder [default %d, 0 to cancel]: ", suggested+1)
		line, err := p.in.Read(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			fmt.Fprintln(p.out)
			return setlist.Folder{}, ctxErr
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return setlist.Folder{}, fmt.Errorf("read folder choice: %w", err)
		}
		choice := strings.TrimSpace(line)
		if errors.Is(err, io.EOF) && choice == "" {
			fmt.Fprintln(p.out)
			return setlist.Folder{}, ErrNoFolderChosen
		}
		if choice == "" {
			return folders[suggested], nil
		}
		n, convErr := strconv.Atoi(choice)
		switch {
		case convErr != nil:
		case n == 0:
			return setlist.Folder{}, ErrNoFolderChosen
		case n >= 1 && n <= len(folders):
			return folders[n-1], nil
		}
		if errors.Is(err, io.EOF) {
			return setlist.Folder{}, ErrNoFolderChosen
		}
		fmt.Fprintln(p.out, "Invalid selection. Enter a number shown above.")
	}
}
