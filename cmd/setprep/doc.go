// Package main hosts the setprep CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, applies flag overrides and
// hands the resulting config to the workflow package. Preview commands
// (parse, match) and maintenance commands (deps, history, config) share the
// same configuration loading so every command sees the same paths and tools.
//
// Keep this package lean: new behavior belongs in the internal packages and
// is surfaced here through flags or dedicated commands.
package main
