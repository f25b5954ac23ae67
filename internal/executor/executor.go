package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"fileq/internal/claim"
	"fileq/internal/config"
	"fileq/internal/logging"
)

// ErrMalformedTask reports task content that cannot be run: empty or
// unreadable. Nothing is executed for such tasks.
var ErrMalformedTask = errors.New("malformed task")

// ErrEmptyTask accompanies ErrMalformedTask when the first line holds no
// command.
var ErrEmptyTask = errors.New("task has no command")

// Executor runs claimed tasks through a command interpreter.
type Executor struct {
	shell     string
	shellFlag string
	dir       string
	stdout    io.Writer
	stderr    io.Writer
	logger    *slog.Logger
}

// Option customizes an Executor.
type Option func(*Executor)

// WithOutput redirects the child's stdout and stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(e *Executor) {
		e.stdout = stdout
		e.stderr = stderr
	}
}

// WithWorkDir runs commands in dir instead of the worker's working directory.
func WithWorkDir(dir string) Option {
	return func(e *Executor) {
		e.dir = dir
	}
}

// New builds an Executor from the executor section of cfg.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Executor {
	e := &Executor{
		shell:     "/bin/sh",
		shellFlag: "-c",
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		logger:    logging.NewComponentLogger(logger, "executor"),
	}
	if cfg != nil {
		if shell := strings.TrimSpace(cfg.Executor.Shell); shell != "" {
			e.shell = shell
		}
		if flag := strings.TrimSpace(cfg.Executor.ShellFlag); flag != "" {
			e.shellFlag = flag
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute reads the claimed task's command and runs it to completion. It
// returns an error wrapping ErrMalformedTask when the content is empty or
// unreadable; otherwise the outcome, including spawn failures, is reported in
// the Result. ctx only scopes logging: a running command is never cancelled.
func (e *Executor) Execute(ctx context.Context, c *claim.Claim) (Result, error) {
	task := c.Task()
	logger := e.logger.With(logging.String(logging.FieldTask, task.Name))

	command, err := c.ReadCommand()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrMalformedTask, err)
	}
	if strings.TrimSpace(command) == "" {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrMalformedTask, task.Name, ErrEmptyTask)
	}

	logger.InfoContext(ctx, "task starting",
		logging.String(logging.FieldEventType, "task_starting"),
		logging.String("command", command),
	)

	cmd := exec.Command(e.shell, e.shellFlag, command)
	cmd.Dir = e.dir
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	result := Result{Command: command, Started: time.Now()}
	if err := cmd.Start(); err != nil {
		result.Outcome = OutcomeSpawnFailed
		result.Err = err
		result.Elapsed = time.Since(result.Started)
		return result, nil
	}

	waitErr := cmd.Wait()
	result.Elapsed = time.Since(result.Started)
	classify(&result, cmd.ProcessState, waitErr)
	return result, nil
}

func classify(result *Result, state *os.ProcessState, waitErr error) {
	if state == nil {
		result.Outcome = OutcomeSpawnFailed
		result.Err = waitErr
		return
	}
	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		result.Outcome = OutcomeSignaled
		result.Signal = status.Signal()
		result.ExitCode = -1
		return
	}
	result.ExitCode = state.ExitCode()
	if result.ExitCode == 0 {
		result.Outcome = OutcomeSuccess
		return
	}
	result.Outcome = OutcomeFailure
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		// Copying output failed even though the child exited.
		result.Err = waitErr
	}
}
