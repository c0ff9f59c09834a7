package deps

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"setprep/internal/config"
	"setprep/internal/services"
	"setprep/internal/stage"
)

// Requirement defines an external tool a stage relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// Stage is the stage that invokes the tool.
	Stage    string
	Optional bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Stage       string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Stage:       req.Stage,
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Requirements lists the tools used by the configured chain. Tools for
// skipped stages are optional.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Tools.FFmpeg,
			Description: "Converts matched files to 24-bit AIFF",
			Stage:       stage.NameConvert,
			Optional:    cfg.SkipsStage(stage.NameConvert),
		},
		{
			Name:        "RX 10",
			Command:     cfg.Tools.RX10,
			Description: "Applies the premaster preset",
			Stage:       stage.NamePremaster,
			Optional:    cfg.SkipsStage(stage.NamePremaster),
		},
		{
			Name:        "Essentia",
			Command:     cfg.Tools.Essentia,
			Description: "Extracts tempo, key and energy",
			Stage:       stage.NameAnalyze,
			Optional:    cfg.SkipsStage(stage.NameAnalyze),
		},
	}
}

// ToolUnavailableError lists required tools that could not be found.
type ToolUnavailableError struct {
	Missing []Status
}

func (e *ToolUnavailableError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		parts = append(parts, fmt.Sprintf("%s (%s stage): %s", m.Name, m.Stage, m.Detail))
	}
	return "required tools unavailable: " + strings.Join(parts, "; ")
}

// Is classifies the error as services.ErrToolUnavailable.
func (e *ToolUnavailableError) Is(target error) bool {
	return target == services.ErrToolUnavailable
}

// Verify checks every non-optional requirement and returns a
// *ToolUnavailableError naming the missing ones.
func Verify(cfg *config.Config) ([]Status, error) {
	statuses := CheckBinaries(Requirements(cfg))
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return statuses, &ToolUnavailableError{Missing: missing}
	}
	return statuses, nil
}

// AsToolUnavailable extracts a *ToolUnavailableError from err.
func AsToolUnavailable(err error) (*ToolUnavailableError, bool) {
	var target *ToolUnavailableError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
