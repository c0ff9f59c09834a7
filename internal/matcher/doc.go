// Package matcher resolves set-list entries to source audio files.
//
// Matcher scores every candidate against an entry and classifies the outcome
// as Matched, Ambiguous, or NotFound. Match is a pure function of its inputs.
// Ambiguous outcomes are settled by a Disambiguator: AutoPick takes the
// top-ranked alternative, Abandon takes none, and Prompt asks the operator.
// Resolver ties the two together and keeps track of files already claimed
// by earlier entries in the run.
package matcher
