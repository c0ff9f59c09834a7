package stage

import "time"

// Status is the result of running one stage for one track.
type Status string

const (
	StatusSkipped   Status = "skipped"
	StatusDryRun    Status = "dry_run"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Reasons recorded on skipped outcomes.
const (
	ReasonConfigured      = "skipped by configuration"
	ReasonUpstreamFailure = "upstream failure"
	ReasonCancelled       = "run cancelled"
)

// Outcome records one stage execution.
type Outcome struct {
	Stage    string        `json:"stage"`
	Status   Status        `json:"status"`
	Input    string        `json:"input,omitempty"`
	Output   string        `json:"output,omitempty"`
	Duration time.Duration `json:"duration_ns"`
	// Error carries the failure text for StatusFailed.
	Error string `json:"error,omitempty"`
	// Reason explains a skip.
	Reason string `json:"reason,omitempty"`
}

// Failed reports whether the stage failed.
func (o Outcome) Failed() bool {
	return o.Status == StatusFailed
}

// Skip builds a skipped outcome that passes input through.
func Skip(name, input, reason string) Outcome {
	return Outcome{Stage: name, Status: StatusSkipped, Input: input, Output: input, Reason: reason}
}
