package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"fileq/internal/config"
	"fileq/internal/preflight"
	"fileq/internal/taskdir"
)

const commandPreviewWidth = 60

type pendingTask struct {
	name    string
	command string
	size    int64
	queued  string
}

type queueStatus struct {
	cfg         *config.Config
	pending     []pendingTask
	pendingErr  error
	completed   int
	completeErr error
	quarantined int
	quarantErr  error
	checks      []preflight.Result
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status [pending-dir]",
		Short: "Show pending tasks and completed counts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var pendingDir string
			if len(args) == 1 {
				pendingDir = args[0]
			}
			if err := cfg.ApplyOverrides(pendingDir, "", 0); err != nil {
				return err
			}

			status := collectStatus(cfg)
			status.checks = preflight.RunAll(cmd.Context(), cfg, cfg.Workers.Watch)
			out := cmd.OutOrStdout()
			printStatus(out, status, shouldColorize(out))
			return status.pendingErr
		},
	}
}

func collectStatus(cfg *config.Config) queueStatus {
	status := queueStatus{cfg: cfg}

	tasks, err := taskdir.List(cfg.Paths.PendingDir)
	if err != nil {
		status.pendingErr = err
	}
	for _, task := range tasks {
		status.pending = append(status.pending, describeTask(task))
	}

	status.completed, status.completeErr = countTasks(cfg.Paths.CompleteDir)
	if cfg.Paths.QuarantineDir != "" {
		status.quarantined, status.quarantErr = countTasks(cfg.Paths.QuarantineDir)
	}
	return status
}

// countTasks treats a directory that does not exist yet as empty.
func countTasks(dir string) (int, error) {
	tasks, err := taskdir.List(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	return len(tasks), nil
}

// describeTask reads without claiming; a task being run is still listed.
func describeTask(task taskdir.Task) pendingTask {
	desc := pendingTask{name: task.Name, command: "-", queued: "-"}
	info, err := os.Lstat(task.Path)
	if err != nil {
		// Claimed and archived since the listing.
		desc.command = "(gone)"
		return desc
	}
	desc.size = info.Size()
	desc.queued = humanize.Time(info.ModTime())

	file, err := os.Open(task.Path)
	if err != nil {
		return desc
	}
	defer file.Close()
	line, err := bufio.NewReader(io.LimitReader(file, 4096)).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return desc
	}
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		desc.command = "(empty)"
		return desc
	}
	desc.command = truncate(line, commandPreviewWidth)
	return desc
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-1]) + "…"
}

func printStatus(out io.Writer, status queueStatus, colorize bool) {
	cfg := status.cfg
	var block statusBlock

	if status.pendingErr != nil {
		block.addError("Pending", status.pendingErr)
	} else {
		kind := statusInfo
		if len(status.pending) == 0 {
			kind = statusOK
		}
		block.add("Pending", kind, countLabel(len(status.pending))+" in "+cfg.Paths.PendingDir)
	}

	if status.completeErr != nil {
		block.addError("Completed", status.completeErr)
	} else {
		block.add("Completed", statusOK, countLabel(status.completed)+" in "+cfg.Paths.CompleteDir)
	}

	if cfg.Paths.QuarantineDir != "" {
		switch {
		case status.quarantErr != nil:
			block.addError("Quarantine", status.quarantErr)
		case status.quarantined > 0:
			block.add("Quarantine", statusWarn, countLabel(status.quarantined)+" in "+cfg.Paths.QuarantineDir)
		default:
			block.add("Quarantine", statusOK, countLabel(0)+" in "+cfg.Paths.QuarantineDir)
		}
	}

	if len(status.checks) > 0 {
		block.separator()
		for _, check := range status.checks {
			kind := statusOK
			if !check.Passed {
				kind = statusWarn
			}
			block.add(check.Name, kind, check.Detail)
		}
	}
	block.write(out, colorize)

	if len(status.pending) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderPendingTable(status.pending))
}

func countLabel(n int) string {
	if n == 1 {
		return "1 task"
	}
	return humanize.Comma(int64(n)) + " tasks"
}
