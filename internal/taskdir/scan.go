package taskdir

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrDirectoryUnavailable reports that the pending directory could not be
// opened or listed.
var ErrDirectoryUnavailable = errors.New("task directory unavailable")

// Task is a candidate task file in the pending directory.
type Task struct {
	Name string
	Path string
}

// Scan returns a lazy sequence of candidate tasks in dir. Each range over the
// sequence lists the directory from scratch. A listing failure is yielded once
// as an error wrapping ErrDirectoryUnavailable and ends the sequence.
func Scan(dir string) iter.Seq2[Task, error] {
	return func(yield func(Task, error) bool) {
		names, err := regularFileNames(dir)
		if err != nil {
			yield(Task{}, err)
			return
		}
		for _, name := range names {
			if !yield(Task{Name: name, Path: filepath.Join(dir, name)}, nil) {
				return
			}
		}
	}
}

// List collects a full scan of dir.
func List(dir string) ([]Task, error) {
	var tasks []Task
	for task, err := range Scan(dir) {
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func regularFileNames(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrDirectoryUnavailable, dir, err)
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrDirectoryUnavailable, dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		// Type comes from lstat semantics: symlinks report ModeSymlink.
		if !entry.Type().IsRegular() {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.SortFunc(names, strings.Compare)
	return names, nil
}
