package claim_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"fileq/internal/claim"
	"fileq/internal/taskdir"
)

func writeTask(t *testing.T, dir, name, content string) taskdir.Task {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return taskdir.Task{Name: name, Path: path}
}

func TestTryClaimIsExclusive(t *testing.T) {
	task := writeTask(t, t.TempDir(), "a.task", "echo hi\n")

	first, err := claim.TryClaim(task)
	if err != nil {
		t.Fatalf("first TryClaim: %v", err)
	}

	// flock(2) conflicts between separate open file descriptions even in one process.
	second, err := claim.TryClaim(task)
	if !errors.Is(err, claim.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable while held, got claim=%v err=%v", second, err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("second Release should be a no-op, got %v", err)
	}

	third, err := claim.TryClaim(task)
	if err != nil {
		t.Fatalf("expected claim after release, got %v", err)
	}
	third.Release()
}

func TestTryClaimMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := claim.TryClaim(taskdir.Task{Name: "gone", Path: filepath.Join(dir, "gone")})
	if !errors.Is(err, claim.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "gone")); !os.IsNotExist(statErr) {
		t.Fatal("claim attempt must not create the task file")
	}
}

func TestTryClaimRejectsSymlink(t *testing.T) {
	dir := t.TempDir()
	target := writeTask(t, dir, "target", "echo hi\n")
	link := filepath.Join(dir, "link.task")
	if err := os.Symlink(target.Path, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	if _, err := claim.TryClaim(taskdir.Task{Name: "link.task", Path: link}); !errors.Is(err, claim.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for symlink, got %v", err)
	}
}

func TestTryClaimRejectsFifoWithoutBlocking(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipe.task")
	if err := unix.Mkfifo(path, 0o644); err != nil {
		t.Fatalf("mkfifo: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		c, err := claim.TryClaim(taskdir.Task{Name: "pipe.task", Path: path})
		if c != nil {
			c.Release()
		}
		done <- err
	}()
	select {
	case err := <-done:
		if !errors.Is(err, claim.ErrUnavailable) {
			t.Fatalf("expected ErrUnavailable for fifo, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("TryClaim blocked opening a fifo")
	}
}

func TestStatReportsClaimedFile(t *testing.T) {
	task := writeTask(t, t.TempDir(), "a.task", "echo hi\n")
	c, err := claim.TryClaim(task)
	if err != nil {
		t.Fatalf("TryClaim: %v", err)
	}
	defer c.Release()
	info, err := c.Stat()
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != int64(len("echo hi\n")) {
		t.Fatalf("unexpected size %d", info.Size())
	}
	if c.BytesRead() != 0 {
		t.Fatalf("nothing read yet, got %d", c.BytesRead())
	}
	if _, err := c.ReadCommand(); err != nil {
		t.Fatalf("ReadCommand: %v", err)
	}
	if c.BytesRead() != info.Size() {
		t.Fatalf("expected %d bytes read, got %d", info.Size(), c.BytesRead())
	}
}

func TestTryClaimRejectsArchivedInode(t *testing.T) {
	pending := t.TempDir()
	complete := t.TempDir()
	task := writeTask(t, pending, "a.task", "echo hi\n")

	// Another worker owns and archives the task, then a new file with the
	// same name shows up. Neither the old inode nor a stale path may be won.
	owner, err := claim.TryClaim(task)
	if err != nil {
		t.Fatalf("owner TryClaim: %v", err)
	}
	if err := os.Rename(task.Path, filepath.Join(complete, task.Name)); err != nil {
		t.Fatalf("rename: %v", err)
	}
	owner.Release()

	if _, err := claim.TryClaim(task); !errors.Is(err, claim.ErrUnavailable) {
		t.Fatalf("expected archived task to be unavailable, got %v", err)
	}

	replacement := writeTask(t, pending, "a.task", "echo again\n")
	c, err := claim.TryClaim(replacement)
	if err != nil {
		t.Fatalf("expected replacement task to be claimable, got %v", err)
	}
	defer c.Release()
	cmd, err := c.ReadCommand()
	if err != nil {
		t.Fatalf("ReadCommand: %v", err)
	}
	if cmd != "echo again" {
		t.Fatalf("unexpected command %q", cmd)
	}
}

func TestReadCommandFirstLineOnly(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "trailing newline", content: "echo hi\n", want: "echo hi"},
		{name: "no newline", content: "echo hi", want: "echo hi"},
		{name: "crlf", content: "echo hi\r\nignored\r\n", want: "echo hi"},
		{name: "extra lines ignored", content: "exit 3\necho never\n", want: "exit 3"},
		{name: "empty", content: "", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task := writeTask(t, t.TempDir(), "t", tc.content)
			c, err := claim.TryClaim(task)
			if err != nil {
				t.Fatalf("TryClaim: %v", err)
			}
			defer c.Release()
			got, err := c.ReadCommand()
			if err != nil {
				t.Fatalf("ReadCommand: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
			if c.Task() != task {
				t.Fatalf("unexpected task %+v", c.Task())
			}
		})
	}
}
