package pool

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
)

// Unit identifies one isolation unit.
type Unit struct {
	Index int
	ID    string
}

// RunFunc runs a worker loop for unit until it finishes or ctx ends.
type RunFunc func(ctx context.Context, unit Unit) error

// Waiter blocks until a started unit has finished.
type Waiter interface {
	Wait() error
}

// Spawner starts isolation units.
type Spawner interface {
	Start(ctx context.Context, unit Unit) (Waiter, error)
}

// FuncSpawner runs every unit as a goroutine executing the wrapped function.
type FuncSpawner RunFunc

type funcWaiter struct {
	done chan struct{}
	err  error
}

func (w *funcWaiter) Wait() error {
	<-w.done
	return w.err
}

// Start implements Spawner.
func (f FuncSpawner) Start(ctx context.Context, unit Unit) (Waiter, error) {
	if f == nil {
		return nil, fmt.Errorf("start %s: nil run function", unit.ID)
	}
	w := &funcWaiter{done: make(chan struct{})}
	go func() {
		defer close(w.done)
		w.err = f(ctx, unit)
	}()
	return w, nil
}

// WorkerArgs are the settings handed to each re-executed worker.
type WorkerArgs struct {
	ConfigPath  string
	PendingDir  string
	CompleteDir string
	Watch       bool
	LogLevel    string
	LogFormat   string
}

// Args renders the worker subcommand line for unit.
func (a WorkerArgs) Args(unit Unit) []string {
	args := []string{"worker", "--worker-id", unit.ID}
	if cfg := strings.TrimSpace(a.ConfigPath); cfg != "" {
		args = append(args, "--config", cfg)
	}
	if dir := strings.TrimSpace(a.PendingDir); dir != "" {
		args = append(args, "--pending", dir)
	}
	if dir := strings.TrimSpace(a.CompleteDir); dir != "" {
		args = append(args, "--complete", dir)
	}
	if a.Watch {
		args = append(args, "--watch")
	}
	if level := strings.TrimSpace(a.LogLevel); level != "" {
		args = append(args, "--log-level", level)
	}
	if format := strings.TrimSpace(a.LogFormat); format != "" {
		args = append(args, "--log-format", format)
	}
	return args
}

// ProcessSpawner re-executes a binary once per unit. Children inherit the
// parent's working directory and environment; stdout and stderr default to
// the parent's. Cancelling the start context forwards SIGTERM to children,
// which finish their current task and stop.
type ProcessSpawner struct {
	Executable string
	Args       WorkerArgs
	// Env is appended to the inherited environment.
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

// NewProcessSpawner re-executes the running binary.
func NewProcessSpawner(args WorkerArgs) (*ProcessSpawner, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}
	return &ProcessSpawner{Executable: exe, Args: args}, nil
}

// Start implements Spawner.
func (s *ProcessSpawner) Start(ctx context.Context, unit Unit) (Waiter, error) {
	if strings.TrimSpace(s.Executable) == "" {
		return nil, fmt.Errorf("resolve executable: executable path is empty")
	}

	cmd := exec.CommandContext(ctx, s.Executable, s.Args.Args(unit)...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.Env = append(os.Environ(), s.Env...)
	cmd.Env = append(cmd.Env, "FILEQ_WORKER_INDEX="+strconv.Itoa(unit.Index))
	cmd.Stdout = s.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = s.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("launch worker %s: %w", unit.ID, err)
	}
	return processWaiter{cmd: cmd}, nil
}

type processWaiter struct {
	cmd *exec.Cmd
}

// Wait treats a clean exit as success even when it followed a forwarded
// SIGTERM, which exec reports as the context error.
func (w processWaiter) Wait() error {
	err := w.cmd.Wait()
	if state := w.cmd.ProcessState; state != nil && state.Success() {
		return nil
	}
	return err
}
