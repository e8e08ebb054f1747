// Package main hosts the skiprice CLI entrypoint and command graph.
//
// Each pipeline stage is a subcommand (wrangle, features, train, apply) and
// "run" executes all of them in order. Every output goes through the
// safe-save utility, so rerunning a stage never silently replaces an earlier
// result: the CLI asks before overwriting unless --yes or --no-clobber is
// given, or the configured overwrite policy says otherwise.
//
// Supporting commands inspect the workspace: "history" lists recorded saves,
// "doctor" runs preflight checks, and "config" scaffolds or prints the
// configuration.
package main
