package executor_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"fileq/internal/claim"
	"fileq/internal/config"
	"fileq/internal/executor"
	"fileq/internal/logging"
	"fileq/internal/taskdir"
)

func claimTask(t *testing.T, content string) *claim.Claim {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.task")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write task: %v", err)
	}
	c, err := claim.TryClaim(taskdir.Task{Name: "job.task", Path: path})
	if err != nil {
		t.Fatalf("TryClaim: %v", err)
	}
	t.Cleanup(func() { c.Release() })
	return c
}

func newExecutor(t *testing.T, stdout, stderr *bytes.Buffer, mutate func(*config.Config)) *executor.Executor {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	return executor.New(&cfg, logging.NewNop(), executor.WithOutput(stdout, stderr), executor.WithWorkDir(t.TempDir()))
}

func TestExecuteSuccess(t *testing.T) {
	var stdout, stderr bytes.Buffer
	exec := newExecutor(t, &stdout, &stderr, nil)

	result, err := exec.Execute(t.Context(), claimTask(t, "echo hi\necho ignored\n"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Succeeded() || result.Outcome != executor.OutcomeSuccess {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Status() != 0 {
		t.Fatalf("expected status 0, got %d", result.Status())
	}
	if result.Elapsed < 0 {
		t.Fatalf("expected non-negative elapsed, got %v", result.Elapsed)
	}
	if result.Started.IsZero() {
		t.Fatal("expected start time to be recorded")
	}
	if stdout.String() != "hi\n" {
		t.Fatalf("expected only the first line to run, stdout=%q", stdout.String())
	}
	if result.Command != "echo hi" {
		t.Fatalf("unexpected command %q", result.Command)
	}
}

func TestExecuteFailureExitCode(t *testing.T) {
	var stdout, stderr bytes.Buffer
	exec := newExecutor(t, &stdout, &stderr, nil)

	result, err := exec.Execute(t.Context(), claimTask(t, "echo oops >&2; exit 3\n"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Outcome != executor.OutcomeFailure {
		t.Fatalf("expected failure outcome, got %v", result.Outcome)
	}
	if result.ExitCode != 3 || result.Status() != 3 {
		t.Fatalf("expected exit code 3, got %d/%d", result.ExitCode, result.Status())
	}
	if stderr.String() != "oops\n" {
		t.Fatalf("expected child stderr to be forwarded, got %q", stderr.String())
	}
}

func TestExecuteSignaled(t *testing.T) {
	var stdout, stderr bytes.Buffer
	exec := newExecutor(t, &stdout, &stderr, nil)

	result, err := exec.Execute(t.Context(), claimTask(t, "kill -TERM $$\n"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Outcome != executor.OutcomeSignaled {
		t.Fatalf("expected signaled outcome, got %+v", result)
	}
	if result.Signal != syscall.SIGTERM {
		t.Fatalf("expected SIGTERM, got %v", result.Signal)
	}
	if result.Status() != 128+int(syscall.SIGTERM) {
		t.Fatalf("unexpected status %d", result.Status())
	}
	if result.Succeeded() {
		t.Fatal("signaled task must not count as success")
	}
}

func TestExecuteSpawnFailure(t *testing.T) {
	var stdout, stderr bytes.Buffer
	exec := newExecutor(t, &stdout, &stderr, func(cfg *config.Config) {
		cfg.Executor.Shell = filepath.Join(t.TempDir(), "missing-shell")
	})

	result, err := exec.Execute(t.Context(), claimTask(t, "echo hi\n"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Outcome != executor.OutcomeSpawnFailed {
		t.Fatalf("expected spawn failure, got %+v", result)
	}
	if result.Err == nil {
		t.Fatal("expected spawn error to be carried")
	}
	if result.Status() != -1 {
		t.Fatalf("expected status -1, got %d", result.Status())
	}
}

func TestExecuteMalformed(t *testing.T) {
	for name, content := range map[string]string{
		"empty":        "",
		"blank line":   "\nexit 0\n",
		"whitespace":   "   \t\n",
		"only newline": "\n",
	} {
		t.Run(name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			exec := newExecutor(t, &stdout, &stderr, nil)
			_, err := exec.Execute(t.Context(), claimTask(t, content))
			if !errors.Is(err, executor.ErrMalformedTask) {
				t.Fatalf("expected ErrMalformedTask, got %v", err)
			}
			if !errors.Is(err, executor.ErrEmptyTask) {
				t.Fatalf("expected ErrEmptyTask, got %v", err)
			}
			if stdout.Len() != 0 || stderr.Len() != 0 {
				t.Fatal("nothing should run for malformed tasks")
			}
		})
	}
}

func TestOutcomeString(t *testing.T) {
	if executor.OutcomeSignaled.String() != "signaled" {
		t.Fatalf("unexpected label %q", executor.OutcomeSignaled.String())
	}
	if executor.Outcome(42).String() != "outcome(42)" {
		t.Fatalf("unexpected fallback label %q", executor.Outcome(42).String())
	}
}
