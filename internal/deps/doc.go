// Package deps checks that the external tools the stage chain invokes can be
// found before any track is processed.
package deps
