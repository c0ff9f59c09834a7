// Package preflight provides readiness checks for the filesystem paths a run
// depends on.
//
// The workflow calls RunAll before matching so a run with an unwritable
// target or source library fails before any file is touched. The CLI deps
// command shows the same results.
package preflight
