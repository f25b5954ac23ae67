package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fileq/internal/config"
	"fileq/internal/logging"
)

func TestConsoleLoggerWritesSingleLineWithSubject(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger = logging.NewComponentLogger(logger, "worker").With(logging.String(logging.FieldWorker, "w1"))
	logger.Info("task completed",
		logging.String(logging.FieldTask, "a.task"),
		logging.Duration("elapsed", 1500*time.Millisecond),
		logging.String("destination", "complete/a.task"),
	)

	line := buf.String()
	if strings.Count(line, "\n") != 1 {
		t.Fatalf("expected exactly one line, got %q", line)
	}
	for _, want := range []string{"INFO", "[worker]", "w1 · a.task", "task completed", "elapsed=1.5s", "destination=complete/a.task"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "component=") || strings.Contains(line, "task=") {
		t.Fatalf("expected subject fields to be lifted out of key/values, got %q", line)
	}
}

func TestConsoleLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Debug("hidden")
	logger.Warn("shown", logging.Error(errors.New("rename failed: exists")))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info/debug records to be dropped, got %q", out)
	}
	if !strings.Contains(out, `error="rename failed: exists"`) {
		t.Fatalf("expected quoted error value, got %q", out)
	}
}

func TestJSONLoggerEmitsParseableRecords(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("task failed", logging.String(logging.FieldTask, "b.task"), logging.Int("exit_code", 3))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	if payload["msg"] != "task failed" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if payload["level"] != "info" {
		t.Fatalf("expected lower-case level, got %v", payload["level"])
	}
	if payload["exit_code"] != float64(3) {
		t.Fatalf("unexpected exit_code: %v", payload["exit_code"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatal("expected ts key")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewWritesToFilePath(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "fileq.log")
	logger, err := logging.New(logging.Options{OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hello")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestNewFromConfigLevelOverride(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "error"
	logger, err := logging.NewFromConfig(&cfg, "debug")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if !logger.Enabled(t.Context(), -4) {
		t.Fatal("expected debug level to be enabled by override")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "archive failed", "archive_failed", logging.String(logging.FieldImpact, "task stays pending"))

	out := buf.String()
	for _, want := range []string{"event_type=archive_failed", "error_hint=", `impact="task stays pending"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(t.Context(), 8) {
		t.Fatal("expected nop logger to be disabled at every level")
	}
	logging.NewComponentLogger(nil, "x").Info("discarded")
}
