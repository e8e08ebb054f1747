// Package dataset provides the tabular dataset passed between pipeline
// stages: named, typed columns backed by a gota DataFrame, lossless CSV
// encoding with a header row, and a msgpack form for binary snapshots.
package dataset
