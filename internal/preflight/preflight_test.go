package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fileq/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCreatableDirectory_Missing(t *testing.T) {
	result := CheckCreatableDirectory("complete", filepath.Join(t.TempDir(), "a", "b"))
	if !result.Passed {
		t.Fatalf("expected creatable dir to pass, got: %s", result.Detail)
	}
}

func TestCheckCreatableDirectory_UnderFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckCreatableDirectory("complete", filepath.Join(f, "complete"))
	if result.Passed {
		t.Fatal("expected failure when ancestor is a file")
	}
}

func TestCheckSameFilesystem(t *testing.T) {
	base := t.TempDir()
	result := CheckSameFilesystem("fs", base, filepath.Join(base, "not-yet", "complete"))
	if !result.Passed {
		t.Fatalf("expected same filesystem, got: %s", result.Detail)
	}
}

func TestCheckShell(t *testing.T) {
	if result := CheckShell("/bin/sh"); !result.Passed {
		t.Fatalf("expected /bin/sh to be found, got: %s", result.Detail)
	}
	if result := CheckShell("definitely-not-a-shell-binary"); result.Passed {
		t.Fatal("expected missing shell to fail")
	}
	if result := CheckShell(" "); result.Passed {
		t.Fatal("expected empty shell to fail")
	}
}

func TestCheckWatch(t *testing.T) {
	if result := CheckWatch(context.Background(), t.TempDir()); !result.Passed {
		t.Fatalf("expected watch to succeed, got: %s", result.Detail)
	}
	if result := CheckWatch(context.Background(), filepath.Join(t.TempDir(), "missing")); result.Passed {
		t.Fatal("expected watch on missing dir to fail")
	}
}

func TestRunAllGatesOptionalChecks(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	results := RunAll(context.Background(), cfg, false)
	names := map[string]bool{}
	for _, r := range results {
		names[r.Name] = true
	}
	if names["Directory watch"] || names["Quarantine directory"] {
		t.Fatalf("unexpected optional checks: %+v", results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, got %+v", failed)
	}

	cfg = testsupport.NewConfig(t, testsupport.WithQuarantine())
	results = RunAll(context.Background(), cfg, true)
	names = map[string]bool{}
	for _, r := range results {
		names[r.Name] = true
	}
	for _, want := range []string{"Directory watch", "Quarantine directory", "Quarantine filesystem"} {
		if !names[want] {
			t.Fatalf("expected %q check, got %+v", want, results)
		}
	}
}

func TestRunAllReportsMissingPendingDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.PendingDir = filepath.Join(testsupport.BaseDir(cfg), "missing")
	failed := Failed(RunAll(context.Background(), cfg, false))
	if len(failed) == 0 || failed[0].Name != "Pending directory" {
		t.Fatalf("expected pending directory failure, got %+v", failed)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, true); results != nil {
		t.Fatalf("expected nil, got %+v", results)
	}
}
