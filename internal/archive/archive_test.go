package archive_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fileq/internal/archive"
	"fileq/internal/config"
	"fileq/internal/taskdir"
)

type layout struct {
	pending  string
	complete string
	cfg      *config.Config
}

func newLayout(t *testing.T, quarantine bool) layout {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.PendingDir = filepath.Join(base, "tasks")
	cfg.Paths.CompleteDir = filepath.Join(base, "complete")
	if quarantine {
		cfg.Paths.QuarantineDir = filepath.Join(base, "quarantine")
	}
	if err := os.MkdirAll(cfg.Paths.PendingDir, 0o755); err != nil {
		t.Fatalf("mkdir pending: %v", err)
	}
	return layout{pending: cfg.Paths.PendingDir, complete: cfg.Paths.CompleteDir, cfg: &cfg}
}

func (l layout) task(t *testing.T, name string) taskdir.Task {
	t.Helper()
	path := filepath.Join(l.pending, name)
	if err := os.WriteFile(path, []byte("true\n"), 0o644); err != nil {
		t.Fatalf("write task: %v", err)
	}
	return taskdir.Task{Name: name, Path: path}
}

func TestArchiveMovesTask(t *testing.T) {
	l := newLayout(t, false)
	a := archive.New(l.cfg)
	if err := a.EnsureCompleteDir(); err != nil {
		t.Fatalf("EnsureCompleteDir: %v", err)
	}
	task := l.task(t, "a.task")

	dest, err := a.Archive(task)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if dest != filepath.Join(l.complete, "a.task") {
		t.Fatalf("unexpected destination %q", dest)
	}
	if _, err := os.Stat(task.Path); !os.IsNotExist(err) {
		t.Fatalf("expected task to leave pending dir, stat err = %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("expected archived file: %v", err)
	}
}

func TestArchiveRefusesToOverwrite(t *testing.T) {
	l := newLayout(t, false)
	a := archive.New(l.cfg)
	if err := a.EnsureCompleteDir(); err != nil {
		t.Fatalf("EnsureCompleteDir: %v", err)
	}
	existing := filepath.Join(l.complete, "dup.task")
	if err := os.WriteFile(existing, []byte("old\n"), 0o644); err != nil {
		t.Fatalf("write existing: %v", err)
	}
	task := l.task(t, "dup.task")

	_, err := a.Archive(task)
	if !errors.Is(err, archive.ErrMoveFailed) {
		t.Fatalf("expected ErrMoveFailed, got %v", err)
	}
	if !errors.Is(err, os.ErrExist) {
		t.Fatalf("expected exists cause, got %v", err)
	}
	if _, err := os.Stat(task.Path); err != nil {
		t.Fatalf("task must stay pending after failed move: %v", err)
	}
	content, _ := os.ReadFile(existing)
	if string(content) != "old\n" {
		t.Fatalf("existing archive entry was overwritten: %q", content)
	}
}

func TestArchiveMissingCompleteDir(t *testing.T) {
	l := newLayout(t, false)
	a := archive.New(l.cfg)
	task := l.task(t, "a.task")
	if _, err := a.Archive(task); !errors.Is(err, archive.ErrMoveFailed) {
		t.Fatalf("expected ErrMoveFailed, got %v", err)
	}
}

func TestQuarantine(t *testing.T) {
	l := newLayout(t, true)
	a := archive.New(l.cfg)
	if !a.QuarantineEnabled() {
		t.Fatal("expected quarantine to be enabled")
	}
	if err := a.EnsureCompleteDir(); err != nil {
		t.Fatalf("EnsureCompleteDir: %v", err)
	}
	task := l.task(t, "empty.task")
	dest, err := a.Quarantine(task)
	if err != nil {
		t.Fatalf("Quarantine: %v", err)
	}
	if filepath.Dir(dest) != l.cfg.Paths.QuarantineDir {
		t.Fatalf("unexpected quarantine destination %q", dest)
	}

	disabled := archive.New(newLayout(t, false).cfg)
	if _, err := disabled.Quarantine(task); !errors.Is(err, archive.ErrQuarantineDisabled) {
		t.Fatalf("expected ErrQuarantineDisabled, got %v", err)
	}
}

func TestEnsureCompleteDirPermissions(t *testing.T) {
	l := newLayout(t, false)
	a := archive.New(l.cfg)
	if err := a.EnsureCompleteDir(); err != nil {
		t.Fatalf("EnsureCompleteDir: %v", err)
	}
	info, err := os.Stat(a.CompleteDir())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		t.Fatalf("expected owner-only complete dir, got %o", info.Mode().Perm())
	}
}
