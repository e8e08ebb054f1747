// Package safesave persists pipeline outputs without silently clobbering
// existing files.
//
// Save dispatches on the filename extension: ".csv" writes a tabular dataset
// with a header row and ".pkl" writes a msgpack blob. The destination
// directory is created on demand. When the destination already exists a
// Confirmer decides whether to replace it; declining is a normal outcome
// reported as StatusSkipped rather than an error. Replacement happens through
// a temp file and rename in the same directory so readers never observe a
// partially written file.
//
// Every outcome is logged and handed to an optional Recorder, which the CLI
// wires to the SQLite save ledger.
package safesave
