// Package store persists a history of engine runs in SQLite.
//
// Every recorded run carries the grammar's content-addressed
// fingerprint, so a listing can be filtered down to exactly the runs
// produced by one grammar even after the source file changes on disk.
//
// The store is append-only from the CLI's point of view: runs are
// recorded and listed, never updated. The engine core never touches
// this package; recording is wired in by the CLI around engine calls.
package store
