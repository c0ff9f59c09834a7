// Package history keeps a SQLite record of past runs so operators can list
// what was prepared for each set.
package history
