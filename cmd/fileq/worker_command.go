package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fileq/internal/executor"
	"fileq/internal/worker"
)

// newWorkerCommand is the entry point re-executed by the process spawner.
func newWorkerCommand(ctx *commandContext) *cobra.Command {
	var workerID string
	var pendingDir string
	var completeDir string
	var watch bool

	cmd := &cobra.Command{
		Use:    "worker",
		Short:  "Run a single worker (used internally by the pool)",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ApplyOverrides(pendingDir, completeDir, 0); err != nil {
				return err
			}
			logger, err := ctx.newLogger(cmd, cfg)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := worker.New(cfg, logger,
				worker.WithID(workerID),
				worker.WithExecutorOptions(executor.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())),
			)
			// The pool resolves watch mode; config is not consulted here.
			return w.Run(runCtx, watch)
		},
	}

	cmd.Flags().StringVar(&workerID, "worker-id", "", "Identifier used in log lines")
	cmd.Flags().StringVar(&pendingDir, "pending", "", "Pending task directory")
	cmd.Flags().StringVar(&completeDir, "complete", "", "Completed task directory")
	cmd.Flags().BoolVar(&watch, "watch", false, "Watch the pending directory after draining")
	return cmd
}
