// Package ledger keeps a SQLite history of every safe-save outcome so
// operators can see which stage wrote or kept which file, and when.
//
// The schema is managed by ordered SQL migrations embedded in the binary.
// Store implements safesave.Recorder; stage and run ID are taken from the
// context the save ran under.
package ledger
