// Package essentia runs the Essentia music extractor, which writes its
// features as JSON next to the analysed file.
package essentia
