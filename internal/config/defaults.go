package config

const (
	defaultPendingDir   = "tasks"
	defaultCompleteDir  = "complete"
	defaultSequenceFile = ".fileq.seq"
	defaultWorkerCount  = 1
	defaultShell        = "/bin/sh"
	defaultShellFlag    = "-c"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"

	// CompleteDirPerm is applied when the completed directory is created.
	CompleteDirPerm = 0o700
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			PendingDir:   defaultPendingDir,
			CompleteDir:  defaultCompleteDir,
			SequenceFile: defaultSequenceFile,
		},
		Workers: Workers{
			Count: defaultWorkerCount,
		},
		Executor: Executor{
			Shell:     defaultShell,
			ShellFlag: defaultShellFlag,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
