package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.PendingDir == "" {
		return errors.New("paths.pending_dir must be set")
	}
	if c.Paths.CompleteDir == "" {
		return errors.New("paths.complete_dir must be set")
	}
	if samePath(c.Paths.PendingDir, c.Paths.CompleteDir) {
		return errors.New("paths.complete_dir must differ from paths.pending_dir")
	}
	if c.Paths.QuarantineDir != "" {
		if samePath(c.Paths.QuarantineDir, c.Paths.PendingDir) {
			return errors.New("paths.quarantine_dir must differ from paths.pending_dir")
		}
		if samePath(c.Paths.QuarantineDir, c.Paths.CompleteDir) {
			return errors.New("paths.quarantine_dir must differ from paths.complete_dir")
		}
	}
	if filepath.Dir(c.Paths.SequenceFile) == c.Paths.PendingDir {
		return errors.New("paths.sequence_file must not live inside paths.pending_dir")
	}
	return nil
}

func (c *Config) validateWorkers() error {
	if c.Workers.Count < 1 {
		return fmt.Errorf("workers.count must be at least 1 (got %d)", c.Workers.Count)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func samePath(a, b string) bool {
	return strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}
