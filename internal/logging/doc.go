// Package logging assembles structured slog loggers and formatting helpers used
// across skiprice.
//
// It owns the console and JSON handlers, fans records out to the terminal and
// the log file, and exposes context-aware helpers so stage code automatically
// tags log lines with the active stage and run ID. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
package logging
