package preflight

import (
	"context"

	"fileq/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable check for cfg. watch selects the inotify
// check independently of cfg so command-line overrides are honoured.
func RunAll(ctx context.Context, cfg *config.Config, watch bool) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Pending directory", cfg.Paths.PendingDir))
	results = append(results, CheckCreatableDirectory("Complete directory", cfg.Paths.CompleteDir))
	if cfg.Paths.QuarantineDir != "" {
		results = append(results, CheckCreatableDirectory("Quarantine directory", cfg.Paths.QuarantineDir))
	}

	results = append(results, CheckSameFilesystem("Complete filesystem", cfg.Paths.PendingDir, cfg.Paths.CompleteDir))
	if cfg.Paths.QuarantineDir != "" {
		results = append(results, CheckSameFilesystem("Quarantine filesystem", cfg.Paths.PendingDir, cfg.Paths.QuarantineDir))
	}

	results = append(results, CheckShell(cfg.Executor.Shell))

	if watch {
		results = append(results, CheckWatch(ctx, cfg.Paths.PendingDir))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
