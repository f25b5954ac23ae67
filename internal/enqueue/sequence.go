package enqueue

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 10 * time.Millisecond

// ErrSequenceBusy reports that the counter lock could not be acquired before
// the context ended.
var ErrSequenceBusy = errors.New("sequence counter busy")

// Sequence is a monotonically increasing counter persisted in a file. Every
// call to Next takes an exclusive lock on a sibling lock file, so separate
// processes never hand out the same value.
type Sequence struct {
	path string
}

// NewSequence returns a counter stored at path.
func NewSequence(path string) *Sequence {
	return &Sequence{path: path}
}

// Path returns the counter file location.
func (s *Sequence) Path() string {
	return s.path
}

// Next reserves and returns the next value. The first value is 1.
func (s *Sequence) Next(ctx context.Context) (uint64, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return 0, fmt.Errorf("create sequence directory: %w", err)
	}

	lock := flock.New(s.path + ".lock")
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, fmt.Errorf("%w: %w", ErrSequenceBusy, ctxErr)
		}
		return 0, fmt.Errorf("lock sequence %s: %w", s.path, err)
	}
	if !ok {
		return 0, ErrSequenceBusy
	}
	defer func() {
		_ = lock.Unlock()
	}()

	current, err := s.read()
	if err != nil {
		return 0, err
	}
	next := current + 1
	if err := s.write(next); err != nil {
		return 0, err
	}
	return next, nil
}

func (s *Sequence) read() (uint64, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read sequence %s: %w", s.path, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse sequence %s: %w", s.path, err)
	}
	return value, nil
}

func (s *Sequence) write(value uint64) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("write sequence: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(strconv.FormatUint(value, 10) + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write sequence: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write sequence: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write sequence: %w", err)
	}
	return nil
}
