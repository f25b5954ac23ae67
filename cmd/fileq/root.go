package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fileq/internal/config"
	"fileq/internal/executor"
	"fileq/internal/logging"
	"fileq/internal/pool"
	"fileq/internal/preflight"
	"fileq/internal/worker"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var logFormatFlag string
	var completeDir string
	var workers int
	var watch bool

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag)

	rootCmd := &cobra.Command{
		Use:   "fileq [pending-dir]",
		Short: "Run shell commands queued as files in a directory",
		Long: "fileq drains a directory of task files, running the first line of each\n" +
			"through the shell and moving it to the completed directory. Several\n" +
			"workers, on one machine or many sharing the directory, never run the\n" +
			"same task twice.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("workers") && workers < 1 {
				return fmt.Errorf("--workers must be at least 1 (got %d)", workers)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var pendingDir string
			if len(args) == 1 {
				pendingDir = args[0]
			}
			if err := cfg.ApplyOverrides(pendingDir, completeDir, workers); err != nil {
				return err
			}
			if cmd.Flags().Changed("watch") {
				cfg.Workers.Watch = watch
			}
			return runPool(cmd, ctx, cfg)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format (console, json)")
	rootCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep watching the pending directory after draining it")
	rootCmd.Flags().IntVarP(&workers, "workers", "n", 0, "Number of workers to run")
	rootCmd.Flags().StringVar(&completeDir, "complete", "", "Directory that receives finished tasks")

	rootCmd.AddCommand(newWorkerCommand(ctx))
	rootCmd.AddCommand(newAddCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

func runPool(cmd *cobra.Command, ctx *commandContext, cfg *config.Config) error {
	logger, err := ctx.newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, check := range preflight.Failed(preflight.RunAll(runCtx, cfg, cfg.Workers.Watch)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", check.Name),
			logging.String("detail", check.Detail),
			logging.String(logging.FieldImpact, "workers start anyway"),
		)
	}

	local := func(ctx context.Context, unit pool.Unit) error {
		w := worker.New(cfg, logger,
			worker.WithID(unit.ID),
			worker.WithExecutorOptions(executor.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())),
		)
		return w.Run(ctx, cfg.Workers.Watch)
	}

	var spawner pool.Spawner
	if cfg.Workers.Count > 1 {
		spawner, err = pool.NewProcessSpawner(pool.WorkerArgs{
			ConfigPath:  ctx.loadedConfigPath(),
			PendingDir:  cfg.Paths.PendingDir,
			CompleteDir: cfg.Paths.CompleteDir,
			Watch:       cfg.Workers.Watch,
			LogLevel:    ctx.logLevel(cfg),
			LogFormat:   ctx.logFormat(cfg),
		})
		if err != nil {
			return err
		}
	}

	summary := pool.New(local, spawner, logger).Run(runCtx, pool.Options{
		Count:      cfg.Workers.Count,
		Watch:      cfg.Workers.Watch,
		PendingDir: cfg.Paths.PendingDir,
	})
	return summary.Err()
}
