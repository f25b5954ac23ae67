package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"fileq/internal/archive"
	"fileq/internal/claim"
	"fileq/internal/config"
	"fileq/internal/executor"
	"fileq/internal/logging"
	"fileq/internal/taskdir"
	"fileq/internal/watch"
)

// ChangeSource delivers batches of directory change notifications.
type ChangeSource interface {
	Next(ctx context.Context) ([]watch.Event, error)
	Close() error
}

// WatchFactory opens a ChangeSource for a directory.
type WatchFactory func(dir string) (ChangeSource, error)

// DefaultEmptyTaskGrace is how long a zero-byte task is assumed to be still
// in the middle of being written.
const DefaultEmptyTaskGrace = 5 * time.Second

func defaultWatchFactory(dir string) (ChangeSource, error) {
	return watch.New(dir)
}

// Worker is one drain/watch loop over the pending directory.
type Worker struct {
	id         string
	pendingDir string
	archiver   *archive.Archiver
	executor   *executor.Executor
	logger     *slog.Logger
	newWatch   WatchFactory
	emptyGrace time.Duration

	execOpts []executor.Option

	mu     sync.Mutex
	totals Stats
}

// Option customizes a Worker.
type Option func(*Worker)

// WithID sets the identifier logged with every record. Defaults to a short
// random ID.
func WithID(id string) Option {
	return func(w *Worker) {
		if id != "" {
			w.id = id
		}
	}
}

// WithExecutorOptions forwards options to the task executor.
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(w *Worker) {
		w.execOpts = append(w.execOpts, opts...)
	}
}

// WithWatchFactory replaces the inotify watcher used in watch mode.
func WithWatchFactory(factory WatchFactory) Option {
	return func(w *Worker) {
		if factory != nil {
			w.newWatch = factory
		}
	}
}

// WithEmptyTaskGrace overrides DefaultEmptyTaskGrace. Zero treats every
// empty task as malformed immediately.
func WithEmptyTaskGrace(d time.Duration) Option {
	return func(w *Worker) {
		if d >= 0 {
			w.emptyGrace = d
		}
	}
}

// New builds a worker for the configured pending and completed directories.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Worker {
	w := &Worker{
		id:         uuid.NewString()[:8],
		pendingDir: cfg.Paths.PendingDir,
		archiver:   archive.New(cfg),
		newWatch:   defaultWatchFactory,
		emptyGrace: DefaultEmptyTaskGrace,
	}
	for _, opt := range opts {
		opt(w)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	base := logger.With(logging.String(logging.FieldWorker, w.id))
	w.logger = logging.NewComponentLogger(base, "worker")
	w.executor = executor.New(cfg, base, w.execOpts...)
	return w
}

// ID returns the worker identifier.
func (w *Worker) ID() string {
	return w.id
}

// Totals returns the accumulated statistics of every drain so far.
func (w *Worker) Totals() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.totals
}

// Run ensures the completed directory exists, drains the pending directory,
// and in watch mode keeps draining on every change notification until ctx
// ends. It returns an error only for conditions fatal to this worker: the
// completed directory cannot be created or the watch cannot be established
// or is lost. Cancellation is an orderly stop and returns nil.
func (w *Worker) Run(ctx context.Context, watchMode bool) error {
	if err := w.archiver.EnsureCompleteDir(); err != nil {
		logging.ErrorWithContext(w.logger, "cannot create complete directory", "complete_dir_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions of the complete directory's parent"),
		)
		return err
	}

	w.logger.Info("worker started",
		logging.String(logging.FieldEventType, "worker_started"),
		logging.String("pending_dir", w.pendingDir),
		logging.String("complete_dir", w.archiver.CompleteDir()),
		logging.Bool("watch", watchMode),
	)

	w.Drain(ctx)
	if !watchMode || ctx.Err() != nil {
		w.logFinished()
		return nil
	}

	source, err := w.newWatch(w.pendingDir)
	if err != nil {
		logging.ErrorWithContext(w.logger, "cannot watch pending directory", "watch_setup_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "ensure the pending directory exists and inotify limits are not exhausted"),
		)
		return fmt.Errorf("watch %s: %w", w.pendingDir, err)
	}
	defer source.Close()

	w.logger.Info("watching for new tasks",
		logging.String(logging.FieldEventType, "watch_started"),
		logging.String("pending_dir", w.pendingDir),
	)

	// Tasks created between the first drain and the watch being installed
	// produced no event.
	w.Drain(ctx)

	for {
		events, err := source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.logFinished()
				return nil
			}
			logging.ErrorWithContext(w.logger, "watch failed; leaving watch mode", "watch_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "restart fileq once the pending directory is available"),
			)
			w.logFinished()
			return fmt.Errorf("watch %s: %w", w.pendingDir, err)
		}
		w.logger.Debug("pending directory changed",
			logging.String(logging.FieldEventType, "watch_event"),
			logging.Int("events", len(events)),
		)
		w.Drain(ctx)
	}
}

// Drain runs passes over the pending directory until a pass removes no task
// from it or ctx ends. A scan failure abandons the drain.
func (w *Worker) Drain(ctx context.Context) Stats {
	var stats Stats
	defer func() {
		w.mu.Lock()
		w.totals.Add(stats)
		w.mu.Unlock()
		w.logDrain(stats)
	}()

	for ctx.Err() == nil {
		stats.Passes++
		progressed := false
		for task, err := range taskdir.Scan(w.pendingDir) {
			if err != nil {
				stats.ScanFailures++
				logging.WarnWithContext(w.logger, "cannot scan pending directory", "scan_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check that the pending directory exists and is readable"),
					logging.String(logging.FieldImpact, "scan abandoned"),
				)
				return stats
			}
			if ctx.Err() != nil {
				return stats
			}
			if w.process(ctx, task, &stats) {
				progressed = true
			}
		}
		if !progressed {
			return stats
		}
	}
	return stats
}

// process claims, executes, and archives a single task. It reports whether
// the task left the pending directory.
func (w *Worker) process(ctx context.Context, task taskdir.Task, stats *Stats) bool {
	stats.Attempted++
	logger := w.logger.With(logging.String(logging.FieldTask, task.Name))

	c, err := claim.TryClaim(task)
	if err != nil {
		stats.Contended++
		logger.Debug("task unavailable", logging.Error(err))
		return false
	}
	defer c.Release()
	stats.Claimed++

	result, err := w.executor.Execute(ctx, c)
	if err != nil {
		if w.stillBeingWritten(c, err) {
			stats.Unwritten++
			logger.Debug("task is empty and recent; waiting for its content",
				logging.String(logging.FieldEventType, "task_unwritten"),
				logging.Duration("grace", w.emptyGrace),
			)
			return false
		}
		stats.Malformed++
		return w.handleMalformed(logger, task, err, stats)
	}

	dest, err := w.archiver.Archive(task)
	if err != nil {
		stats.MoveFailures++
		logging.ErrorWithContext(logger, "task rename failed; task stays pending", "archive_failed",
			logging.Error(err),
			logging.String("outcome", result.Outcome.String()),
			logging.Int("exit_code", result.Status()),
			logging.String(logging.FieldErrorHint, "check the complete directory for a name collision or permission problem"),
		)
		return false
	}
	stats.Archived++

	if result.Succeeded() {
		stats.Succeeded++
		logger.Info("task completed",
			logging.String(logging.FieldEventType, "task_completed"),
			logging.Duration("elapsed", result.Elapsed),
			logging.String("destination", dest),
		)
		return true
	}

	stats.Failed++
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "task_failed"),
		logging.String("outcome", result.Outcome.String()),
		logging.Int("exit_code", result.Status()),
		logging.Duration("elapsed", result.Elapsed),
		logging.String("destination", dest),
	}
	if result.Outcome == executor.OutcomeSignaled {
		attrs = append(attrs, logging.String("signal", result.Signal.String()))
	}
	if result.Err != nil {
		attrs = append(attrs, logging.Error(result.Err))
	}
	logger.Warn("task failed", logging.Args(attrs...)...)
	return true
}

// stillBeingWritten reports whether a task without a command grew after it
// was read, or is a zero-byte file modified within the grace period. Its
// producer has likely created it and not yet written the command; the close
// that follows the write wakes watchers again.
func (w *Worker) stillBeingWritten(c *claim.Claim, cause error) bool {
	if !errors.Is(cause, executor.ErrEmptyTask) {
		return false
	}
	info, err := c.Stat()
	if err != nil {
		return false
	}
	if info.Size() != c.BytesRead() {
		return true
	}
	return info.Size() == 0 && w.emptyGrace > 0 && time.Since(info.ModTime()) < w.emptyGrace
}

func (w *Worker) handleMalformed(logger *slog.Logger, task taskdir.Task, cause error, stats *Stats) bool {
	if !w.archiver.QuarantineEnabled() {
		logging.WarnWithContext(logger, "task has no runnable command; left pending", "task_malformed",
			logging.Error(cause),
			logging.String(logging.FieldErrorHint, "write a command on the first line or remove the file"),
			logging.String(logging.FieldImpact, "task is retried and fails on every scan"),
		)
		return false
	}
	dest, err := w.archiver.Quarantine(task)
	if err != nil {
		logging.ErrorWithContext(logger, "task quarantine failed; task stays pending", "quarantine_failed",
			logging.Error(errors.Join(cause, err)),
		)
		return false
	}
	stats.Quarantined++
	logging.WarnWithContext(logger, "task has no runnable command; quarantined", "task_quarantined",
		logging.Error(cause),
		logging.String("destination", dest),
		logging.String(logging.FieldImpact, "task was not executed"),
	)
	return true
}

func (w *Worker) logDrain(stats Stats) {
	level := slog.LevelDebug
	if stats.Claimed > 0 || stats.ScanFailures > 0 {
		level = slog.LevelInfo
	}
	attrs := append([]logging.Attr{logging.String(logging.FieldEventType, "drain_finished")}, stats.attrs()...)
	w.logger.Log(context.Background(), level, "drain finished", logging.Args(attrs...)...)
}

func (w *Worker) logFinished() {
	totals := w.Totals()
	attrs := append([]logging.Attr{logging.String(logging.FieldEventType, "worker_finished")}, totals.attrs()...)
	w.logger.Info("worker finished", logging.Args(attrs...)...)
}
