package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fileq/internal/enqueue"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var dir string
	var name string

	cmd := &cobra.Command{
		Use:   "add [flags] -- <command...>",
		Short: "Queue a shell command as a new task",
		Long: "Queue a shell command as a new task. The arguments are joined with spaces\n" +
			"and run through the configured shell, so quote anything the shell should\n" +
			"see as a single word.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ApplyOverrides(dir, "", 0); err != nil {
				return err
			}

			path, err := enqueue.New(cfg).Enqueue(cmd.Context(), enqueue.Request{
				Command: strings.Join(args, " "),
				Name:    name,
			})
			if err != nil {
				return fmt.Errorf("queue task: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queued %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Pending directory to queue into")
	cmd.Flags().StringVar(&name, "name", "", "Label embedded in the task file name")
	return cmd
}
