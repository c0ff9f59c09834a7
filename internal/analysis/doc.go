// Package analysis turns Essentia feature extractor output into the compact
// summary stored in a track's comment tag.
//
// A summary looks like "essentia:bpm=128;key=8A;chords=8A;energy=1". Keys are
// rendered in Camelot notation; values outside the Camelot table render as
// "unknown" instead of failing.
package analysis
