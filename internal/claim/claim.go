package claim

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"fileq/internal/taskdir"
)

// ErrUnavailable means the task could not be claimed: another worker holds
// it, it vanished, or it could not be opened. It is an expected race outcome.
var ErrUnavailable = errors.New("task unavailable")

// Claim is exclusive ownership of one task file.
type Claim struct {
	task taskdir.Task
	file *os.File
	read int64

	once sync.Once
}

// TryClaim opens the task read/write and attempts a non-blocking exclusive
// lock. On any failure it returns an error wrapping ErrUnavailable.
func TryClaim(task taskdir.Task) (*Claim, error) {
	file, err := os.OpenFile(task.Path, os.O_RDWR|unix.O_NOFOLLOW|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrUnavailable, task.Name, err)
	}

	if err := flockNonBlocking(file); err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: lock %s: %w", ErrUnavailable, task.Name, err)
	}

	if err := verifyStillPending(file, task.Path); err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, task.Name, err)
	}

	return &Claim{task: task, file: file}, nil
}

func flockNonBlocking(file *os.File) error {
	conn, err := file.SyscallConn()
	if err != nil {
		return err
	}
	var lockErr error
	if err := conn.Control(func(fd uintptr) {
		for {
			lockErr = unix.Flock(int(fd), unix.LOCK_EX|unix.LOCK_NB)
			if lockErr != unix.EINTR {
				return
			}
		}
	}); err != nil {
		return err
	}
	return lockErr
}

// verifyStillPending confirms the locked descriptor is a regular file that
// is still linked at path.
func verifyStillPending(file *os.File, path string) error {
	held, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat descriptor: %w", err)
	}
	if !held.Mode().IsRegular() {
		return fmt.Errorf("not a regular file (%s)", held.Mode().Type())
	}
	current, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("task moved before lock: %w", err)
	}
	if !os.SameFile(held, current) {
		return errors.New("task replaced before lock")
	}
	return nil
}

// Stat describes the claimed file through the locked descriptor.
func (c *Claim) Stat() (os.FileInfo, error) {
	return c.file.Stat()
}

// BytesRead returns the size of the content seen by the last ReadCommand.
func (c *Claim) BytesRead() int64 {
	return c.read
}

// Task returns the claimed task.
func (c *Claim) Task() taskdir.Task {
	return c.task
}

// ReadCommand reads the whole file through the locked descriptor and returns
// its first line without the line terminator. Remaining content is ignored.
func (c *Claim) ReadCommand() (string, error) {
	if _, err := c.file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek %s: %w", c.task.Name, err)
	}
	content, err := io.ReadAll(c.file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", c.task.Name, err)
	}
	c.read = int64(len(content))
	line, _, _ := strings.Cut(string(content), "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// Release closes the descriptor, dropping the lock. It is safe to call more
// than once.
func (c *Claim) Release() error {
	var err error
	c.once.Do(func() {
		err = c.file.Close()
	})
	return err
}
