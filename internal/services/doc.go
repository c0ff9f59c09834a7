// Package services defines shared utilities consumed by pipeline stages and
// the external tool integrations (ffmpeg, RX10, Essentia).
//
// Key responsibilities:
//   - Context helpers that stamp the track label, stage name, and run ID for
//     logging.
//   - Structured error markers plus the Wrap helper so callers can separate
//     per-track failures from run-level configuration problems.
//   - The Invoker abstraction that runs external tools as opaque subprocesses
//     and captures their exit status and output, so tests can substitute fakes.
package services
