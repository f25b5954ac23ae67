package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExecutor()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.PendingDir) == "" {
		c.Paths.PendingDir = defaultPendingDir
	}
	if c.Paths.PendingDir, err = expandPath(strings.TrimSpace(c.Paths.PendingDir)); err != nil {
		return fmt.Errorf("paths.pending_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CompleteDir) == "" {
		c.Paths.CompleteDir = defaultCompleteDir
	}
	if c.Paths.CompleteDir, err = expandPath(strings.TrimSpace(c.Paths.CompleteDir)); err != nil {
		return fmt.Errorf("paths.complete_dir: %w", err)
	}
	if c.Paths.QuarantineDir, err = expandPath(strings.TrimSpace(c.Paths.QuarantineDir)); err != nil {
		return fmt.Errorf("paths.quarantine_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SequenceFile) == "" {
		c.Paths.SequenceFile = defaultSequenceFile
	}
	if c.Paths.SequenceFile, err = expandPath(strings.TrimSpace(c.Paths.SequenceFile)); err != nil {
		return fmt.Errorf("paths.sequence_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeExecutor() {
	c.Executor.Shell = strings.TrimSpace(c.Executor.Shell)
	if c.Executor.Shell == "" {
		c.Executor.Shell = defaultShell
	}
	c.Executor.ShellFlag = strings.TrimSpace(c.Executor.ShellFlag)
	if c.Executor.ShellFlag == "" {
		c.Executor.ShellFlag = defaultShellFlag
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
