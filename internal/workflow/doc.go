// Package workflow runs a complete set preparation for one target folder:
// select the folder, parse its set list, match entries against the source
// library, drive matched tracks through the stage chain, and record the run.
//
// Only one run per target folder may be active at a time; a file lock under
// the state directory enforces this across processes.
package workflow
