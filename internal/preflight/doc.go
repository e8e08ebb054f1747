// Package preflight provides readiness checks for the filesystem paths and
// inputs a pipeline run depends on.
//
// The CLI "skiprice doctor" command runs RunAll and prints each Result, then
// shows which stage outputs already exist via ProbeOutputs.
package preflight
