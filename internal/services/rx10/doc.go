// Package rx10 runs the iZotope RX 10 headless processor to apply a mastering
// preset to an AIFF file.
package rx10
