// Package executor runs the command held by a claimed task.
//
// The command is the first line of the task file, read through the claim's
// locked descriptor, and is handed to a command interpreter as
// `<shell> -c <command>`. The child inherits the worker's output streams and
// runs with no timeout; the worker blocks until it exits. The outcome is
// classified as success, failure with an exit code, termination by signal,
// or a spawn failure.
package executor
