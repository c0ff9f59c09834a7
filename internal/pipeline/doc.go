// Package pipeline drives resolved tracks through the stage chain one track
// at a time and assembles the run log.
package pipeline
