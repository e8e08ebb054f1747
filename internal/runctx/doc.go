// Package runctx carries pipeline run metadata (the active stage and the run
// identifier) through context.Context so logging and the save ledger can tag
// their output without threading extra parameters through every call.
package runctx
