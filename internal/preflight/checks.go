package preflight

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"fileq/internal/watch"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCreatableDirectory passes when path is an accessible directory or
// when its nearest existing ancestor lets a worker create it.
func CheckCreatableDirectory(name, path string) Result {
	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path)
	}
	ancestor, err := existingAncestor(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if err := unix.Access(ancestor, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, ancestor, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckSameFilesystem verifies that tasks can be renamed from src into dst.
// A rename across filesystems fails, leaving every task pending.
func CheckSameFilesystem(name, src, dst string) Result {
	srcDev, err := deviceOf(src)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", src, err)}
	}
	dstDev, err := deviceOf(dst)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", dst, err)}
	}
	if srcDev != dstDev {
		return Result{Name: name, Detail: fmt.Sprintf("%s and %s are on different filesystems", src, dst)}
	}
	return Result{Name: name, Passed: true, Detail: "same filesystem"}
}

// CheckShell verifies the command interpreter can be found.
func CheckShell(shell string) Result {
	const name = "Shell"
	cmd := strings.TrimSpace(shell)
	if cmd == "" {
		return Result{Name: name, Detail: "command not configured"}
	}
	path, err := exec.LookPath(cmd)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("binary %q not found", cmd)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckWatch verifies that a directory watch can be installed on dir.
func CheckWatch(ctx context.Context, dir string) Result {
	const name = "Directory watch"
	if err := ctx.Err(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	w, err := watch.New(dir)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("inotify unavailable (%v)", err)}
	}
	_ = w.Close()
	return Result{Name: name, Passed: true, Detail: "inotify ok"}
}

// deviceOf returns the device of path, or of its nearest existing ancestor
// when path has not been created yet.
func deviceOf(path string) (uint64, error) {
	existing, err := existingAncestor(path)
	if err != nil {
		return 0, err
	}
	var st unix.Stat_t
	if err := unix.Stat(existing, &st); err != nil {
		return 0, fmt.Errorf("stat %s: %w", existing, err)
	}
	return uint64(st.Dev), nil
}

func existingAncestor(path string) (string, error) {
	current := filepath.Clean(path)
	for {
		if _, err := os.Stat(current); err == nil {
			return current, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("no existing ancestor of %s", path)
		}
		current = parent
	}
}
