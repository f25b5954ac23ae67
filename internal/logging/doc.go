// Package logging assembles structured slog loggers and formatting helpers used
// across fileq.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and defines the standard field keys (worker, task, event type)
// so every process in a worker pool emits diagnostics with the same shape.
// Output defaults to stderr, one line per record, which keeps lines from
// concurrent worker processes sharing a terminal intact.
//
// Prefer these constructors over hand-rolled slog setup.
package logging
