// Package stage runs one processing step for one track and reports the
// result as an Outcome.
//
// A stage never returns an error to its caller: tool failures, missing inputs
// and output collisions all become Failed outcomes so the pipeline can decide
// whether the track continues. Skipped stages pass their input through
// unchanged and dry runs validate inputs without touching the filesystem.
package stage
