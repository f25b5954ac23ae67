package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"fileq/internal/config"
	"fileq/internal/logging"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(flagValue(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

// loadedConfigPath returns the config file in use, or "" when defaults
// were used.
func (c *commandContext) loadedConfigPath() string {
	if !c.configExists {
		return ""
	}
	return c.configPath
}

func (c *commandContext) logLevel(cfg *config.Config) string {
	if level := flagValue(c.logLevelFlag); level != "" {
		return level
	}
	return cfg.Logging.Level
}

func (c *commandContext) logFormat(cfg *config.Config) string {
	if format := flagValue(c.logFormatFlag); format != "" {
		return format
	}
	return cfg.Logging.Format
}

// newLogger writes diagnostics to the command's stderr.
func (c *commandContext) newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  c.logLevel(cfg),
		Format: c.logFormat(cfg),
		Writer: cmd.ErrOrStderr(),
	})
}

func flagValue(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
