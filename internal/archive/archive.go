package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"fileq/internal/config"
	"fileq/internal/taskdir"
)

var (
	// ErrMoveFailed reports that a task could not be renamed out of the
	// pending directory. The task remains pending.
	ErrMoveFailed = errors.New("archive move failed")
	// ErrQuarantineDisabled is returned by Quarantine when no quarantine
	// directory is configured.
	ErrQuarantineDisabled = errors.New("quarantine disabled")
)

// Archiver moves tasks into the completed (or quarantine) directory.
type Archiver struct {
	completeDir   string
	quarantineDir string
}

// New returns an Archiver for the configured directories.
func New(cfg *config.Config) *Archiver {
	return &Archiver{
		completeDir:   cfg.Paths.CompleteDir,
		quarantineDir: cfg.Paths.QuarantineDir,
	}
}

// CompleteDir returns the destination directory for archived tasks.
func (a *Archiver) CompleteDir() string {
	return a.completeDir
}

// QuarantineEnabled reports whether malformed tasks are moved aside.
func (a *Archiver) QuarantineEnabled() bool {
	return a.quarantineDir != ""
}

// EnsureCompleteDir creates the completed directory with owner-only
// permissions when it does not exist.
func (a *Archiver) EnsureCompleteDir() error {
	if err := os.MkdirAll(a.completeDir, config.CompleteDirPerm); err != nil {
		return fmt.Errorf("create complete directory %s: %w", a.completeDir, err)
	}
	if a.quarantineDir != "" {
		if err := os.MkdirAll(a.quarantineDir, config.CompleteDirPerm); err != nil {
			return fmt.Errorf("create quarantine directory %s: %w", a.quarantineDir, err)
		}
	}
	return nil
}

// Archive renames task into the completed directory and returns the
// destination path.
func (a *Archiver) Archive(task taskdir.Task) (string, error) {
	return moveInto(task, a.completeDir)
}

// Quarantine renames a malformed task into the quarantine directory.
func (a *Archiver) Quarantine(task taskdir.Task) (string, error) {
	if a.quarantineDir == "" {
		return "", ErrQuarantineDisabled
	}
	return moveInto(task, a.quarantineDir)
}

func moveInto(task taskdir.Task, dir string) (string, error) {
	dest := filepath.Join(dir, task.Name)
	if err := renameNoReplace(task.Path, dest); err != nil {
		return dest, fmt.Errorf("%w: %s -> %s: %w", ErrMoveFailed, task.Path, dest, err)
	}
	return dest, nil
}

func renameNoReplace(src, dest string) error {
	err := unix.Renameat2(unix.AT_FDCWD, src, unix.AT_FDCWD, dest, unix.RENAME_NOREPLACE)
	if err == nil {
		return nil
	}
	if !errors.Is(err, unix.ENOSYS) && !errors.Is(err, unix.EINVAL) {
		return &os.LinkError{Op: "rename", Old: src, New: dest, Err: err}
	}
	// Filesystem without RENAME_NOREPLACE support.
	if _, statErr := os.Lstat(dest); statErr == nil {
		return &os.LinkError{Op: "rename", Old: src, New: dest, Err: os.ErrExist}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return statErr
	}
	return os.Rename(src, dest)
}
