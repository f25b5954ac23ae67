package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"fileq/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The pending directory exists; the completed directory does not, so callers
// exercise its creation.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.PendingDir = filepath.Join(base, "tasks")
	cfgVal.Paths.CompleteDir = filepath.Join(base, "complete")
	cfgVal.Paths.SequenceFile = filepath.Join(base, ".fileq.seq")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := os.MkdirAll(builder.cfg.Paths.PendingDir, 0o755); err != nil {
		t.Fatalf("mkdir pending dir: %v", err)
	}
	return builder.cfg
}

// WithQuarantine enables quarantine of malformed tasks under the base dir.
func WithQuarantine() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.QuarantineDir = filepath.Join(b.baseDir, "quarantine")
	}
}

// WithShell overrides the command interpreter.
func WithShell(shell, flag string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Executor.Shell = shell
		b.cfg.Executor.ShellFlag = flag
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.PendingDir)
}
