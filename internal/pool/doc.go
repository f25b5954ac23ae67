// Package pool launches the configured number of workers and waits for them.
//
// One worker runs directly in the caller. More than one runs as separate
// isolation units created by a Spawner: ProcessSpawner re-executes the
// current binary with the hidden worker subcommand, FuncSpawner runs each
// unit on its own goroutine. Units never share in-process state, so the
// claim lock on each task file is the only coordination between them.
//
// A unit that fails to start or ends with an error is logged and counted in
// the Summary; the pool always waits for every unit it started.
package pool
