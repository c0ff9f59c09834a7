// Package textutil provides text normalization and similarity helpers used
// when matching set-list entries to audio files.
//
// Fold and Key reduce text to a comparable form: diacritics removed,
// lowercased, punctuation collapsed to single spaces. Fingerprints are
// term-frequency vectors over Key tokens compared with cosine similarity.
package textutil
