// Package setlist parses set-list text into ordered track entries and locates
// set files and dated set folders on disk.
//
// A set list is a sequence of blocks. Each block holds a title line (with an
// optional parenthesized version), an artist line, and a "[label year]" line.
// Blocks may be separated by blank lines or a divider of "=" characters.
// Malformed blocks are returned alongside the parsed entries so callers can
// decide whether to abort or continue.
package setlist
