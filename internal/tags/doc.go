// Package tags computes and persists the managed tag fields of a track.
//
// Resolve is a pure function from a set-list entry and a snapshot of the
// file's existing tags to the target tag set. Store reads and writes those
// fields on disk through taglib, falling back to a pure-Go reader for files
// taglib cannot open.
package tags
