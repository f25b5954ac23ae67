// Package main hosts the fileq CLI entrypoint and command graph.
//
// The root command resolves configuration, applies command-line overrides,
// and hands the pending directory to the worker pool. The hidden worker
// subcommand is what the pool re-executes for each additional isolation
// unit. The add, status, and config commands cover producing tasks,
// inspecting a queue, and scaffolding configuration.
//
// Keep this package lean: behavior lives in the internal packages and is
// only surfaced here through flags and output formatting.
package main
