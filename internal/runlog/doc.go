// Package runlog accumulates the record of one set-prep run and persists it
// as indented JSON.
package runlog
