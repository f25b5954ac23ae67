package enqueue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"fileq/internal/config"
)

// StagingDirName is the hidden subdirectory of the pending directory that
// holds tasks still being written.
const StagingDirName = ".staging"

const taskFilePerm = 0o644

var (
	// ErrEmptyCommand rejects requests without a command.
	ErrEmptyCommand = errors.New("empty command")
	// ErrMultilineCommand rejects commands spanning several lines; only the
	// first line of a task file is executed.
	ErrMultilineCommand = errors.New("command spans multiple lines")
	// ErrInvalidName rejects names that are not a plain file name component.
	ErrInvalidName = errors.New("invalid task name")
)

// Request describes a task to publish.
type Request struct {
	// PendingDir overrides the configured pending directory when set.
	PendingDir string
	Command    string
	// Name is an optional label embedded in the file name.
	Name string
}

// Producer publishes task files.
type Producer struct {
	pendingDir string
	seq        *Sequence
}

// New builds a producer for the configured pending directory and sequence
// file.
func New(cfg *config.Config) *Producer {
	return &Producer{
		pendingDir: cfg.Paths.PendingDir,
		seq:        NewSequence(cfg.Paths.SequenceFile),
	}
}

// Enqueue writes req as a new task and returns the published path.
func (p *Producer) Enqueue(ctx context.Context, req Request) (string, error) {
	command, err := normalizeCommand(req.Command)
	if err != nil {
		return "", err
	}
	suffix, err := nameSuffix(req.Name)
	if err != nil {
		return "", err
	}
	pendingDir := strings.TrimSpace(req.PendingDir)
	if pendingDir == "" {
		pendingDir = p.pendingDir
	}

	stagingDir := filepath.Join(pendingDir, StagingDirName)
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}
	staged, err := stage(stagingDir, command)
	if err != nil {
		return "", err
	}
	defer os.Remove(staged)

	seq, err := p.seq.Next(ctx)
	if err != nil {
		return "", fmt.Errorf("reserve sequence: %w", err)
	}
	final := filepath.Join(pendingDir, TaskFileName(seq, suffix))
	// Link fails rather than replacing an existing task.
	if err := os.Link(staged, final); err != nil {
		return "", fmt.Errorf("publish task %s: %w", final, err)
	}
	return final, nil
}

// TaskFileName formats the published name for a sequence value and suffix.
func TaskFileName(seq uint64, suffix string) string {
	return fmt.Sprintf("%012d-%s.task", seq, suffix)
}

func stage(dir, command string) (string, error) {
	tmp, err := os.CreateTemp(dir, "task-*")
	if err != nil {
		return "", fmt.Errorf("stage task: %w", err)
	}
	name := tmp.Name()
	fail := func(err error) (string, error) {
		tmp.Close()
		os.Remove(name)
		return "", fmt.Errorf("stage task: %w", err)
	}
	if _, err := tmp.WriteString(command + "\n"); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(taskFilePerm); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("stage task: %w", err)
	}
	return name, nil
}

func normalizeCommand(command string) (string, error) {
	command = strings.TrimRight(command, "\r\n")
	if strings.ContainsAny(command, "\r\n") {
		return "", ErrMultilineCommand
	}
	if strings.TrimSpace(command) == "" {
		return "", ErrEmptyCommand
	}
	return command, nil
}

func nameSuffix(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.NewString()[:8], nil
	}
	if strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	return name, nil
}
