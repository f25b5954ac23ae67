package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the task directory layout.
type Paths struct {
	PendingDir    string `toml:"pending_dir"`
	CompleteDir   string `toml:"complete_dir"`
	QuarantineDir string `toml:"quarantine_dir"`
	SequenceFile  string `toml:"sequence_file"`
}

// Workers controls how many isolation units run and whether they keep
// watching the pending directory after the initial drain.
type Workers struct {
	Count int  `toml:"count"`
	Watch bool `toml:"watch"`
}

// Executor selects the command interpreter used to run task payloads.
type Executor struct {
	Shell     string `toml:"shell"`
	ShellFlag string `toml:"shell_flag"`
}

// Logging contains configuration for diagnostic output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for fileq.
//
// Configuration sections:
//   - Paths: pending, completed, and quarantine directories plus the
//     producer sequence counter
//   - Workers: pool size and watch mode
//   - Executor: command interpreter
//   - Logging: diagnostic format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Workers  Workers  `toml:"workers"`
	Executor Executor `toml:"executor"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/fileq/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A missing file is not an error: defaults are used
// and exists reports false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("fileq.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// ApplyOverrides replaces configured values with explicitly provided CLI
// values and re-normalizes the result. Empty strings and non-positive counts
// leave the configured value untouched.
func (c *Config) ApplyOverrides(pendingDir, completeDir string, workers int) error {
	if strings.TrimSpace(pendingDir) != "" {
		c.Paths.PendingDir = pendingDir
	}
	if strings.TrimSpace(completeDir) != "" {
		c.Paths.CompleteDir = completeDir
	}
	if workers > 0 {
		c.Workers.Count = workers
	}
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}

// EnsureDirectories creates the completed directory (owner-only) and the
// quarantine directory when one is configured. The pending directory is
// owned by producers and is never created here.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.CompleteDir}
	if c.Paths.QuarantineDir != "" {
		dirs = append(dirs, c.Paths.QuarantineDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, CompleteDirPerm); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
