package executor

import (
	"fmt"
	"syscall"
	"time"
)

// Outcome classifies how a task's command ended.
type Outcome int

const (
	// OutcomeSuccess means the interpreter exited with status 0.
	OutcomeSuccess Outcome = iota
	// OutcomeFailure means the interpreter exited with a non-zero status.
	OutcomeFailure
	// OutcomeSignaled means the interpreter was terminated by a signal.
	OutcomeSignaled
	// OutcomeSpawnFailed means the interpreter could not be started.
	OutcomeSpawnFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeSignaled:
		return "signaled"
	case OutcomeSpawnFailed:
		return "spawn_failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the ephemeral record of one execution.
type Result struct {
	Command  string
	Outcome  Outcome
	ExitCode int
	Signal   syscall.Signal
	Started  time.Time
	Elapsed  time.Duration
	// Err carries the spawn or wait error, if any.
	Err error
}

// Succeeded reports whether the command exited with status 0.
func (r Result) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// Status returns the value logged as the exit code: the exit status for
// normal exits, 128+signal for signaled children, -1 when nothing ran.
func (r Result) Status() int {
	switch r.Outcome {
	case OutcomeSignaled:
		return 128 + int(r.Signal)
	case OutcomeSpawnFailed:
		return -1
	default:
		return r.ExitCode
	}
}
