package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fileq/internal/logging"
)

// ErrUnitsFailed summarizes a run in which at least one unit failed.
var ErrUnitsFailed = errors.New("worker units failed")

// Options selects how many workers run and how.
type Options struct {
	Count      int
	Watch      bool
	PendingDir string
}

// UnitResult records how one unit ended.
type UnitResult struct {
	Unit    Unit
	Err     error
	Elapsed time.Duration
}

// Summary reports every unit of a pool run.
type Summary struct {
	Units   []UnitResult
	Elapsed time.Duration
}

// Failed counts units that did not end cleanly.
func (s Summary) Failed() int {
	n := 0
	for _, u := range s.Units {
		if u.Err != nil {
			n++
		}
	}
	return n
}

// Err returns ErrUnitsFailed joined with each unit error, or nil.
func (s Summary) Err() error {
	var errs []error
	for _, u := range s.Units {
		if u.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", u.Unit.ID, u.Err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrUnitsFailed, errors.Join(errs...))
}

// Pool runs workers in the caller or through a Spawner.
type Pool struct {
	local   RunFunc
	spawner Spawner
	logger  *slog.Logger
}

// New builds a pool. local runs the single-worker case in the caller;
// spawner creates units when more than one worker is requested.
func New(local RunFunc, spawner Spawner, logger *slog.Logger) *Pool {
	return &Pool{
		local:   local,
		spawner: spawner,
		logger:  logging.NewComponentLogger(logger, "pool"),
	}
}

// UnitID names the unit at index (1-based).
func UnitID(index int) string {
	return fmt.Sprintf("w%d", index)
}

// Run starts the workers and waits for all of them.
func (p *Pool) Run(ctx context.Context, opts Options) Summary {
	start := time.Now()
	count := max(opts.Count, 1)

	p.logger.Info("starting workers",
		logging.String(logging.FieldEventType, "pool_started"),
		logging.Int("workers", count),
		logging.Bool("watch", opts.Watch),
		logging.String("pending_dir", opts.PendingDir),
	)

	var summary Summary
	if count == 1 {
		unit := Unit{Index: 1, ID: UnitID(1)}
		unitStart := time.Now()
		err := p.local(ctx, unit)
		summary.Units = []UnitResult{{Unit: unit, Err: err, Elapsed: time.Since(unitStart)}}
		p.logUnit(summary.Units[0])
	} else {
		summary.Units = p.runSpawned(ctx, count)
	}
	summary.Elapsed = time.Since(start)

	p.logger.Info("workers finished",
		logging.String(logging.FieldEventType, "pool_finished"),
		logging.Int("workers", count),
		logging.Int("failed", summary.Failed()),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary
}

func (p *Pool) runSpawned(ctx context.Context, count int) []UnitResult {
	results := make([]UnitResult, count)
	var wg sync.WaitGroup

	for i := range count {
		unit := Unit{Index: i + 1, ID: UnitID(i + 1)}
		results[i].Unit = unit
		unitStart := time.Now()

		waiter, err := p.spawner.Start(ctx, unit)
		if err != nil {
			results[i].Err = err
			p.logUnit(results[i])
			continue
		}
		p.logger.Debug("worker launched",
			logging.String(logging.FieldWorker, unit.ID),
			logging.String(logging.FieldEventType, "worker_launched"),
		)

		wg.Go(func() {
			err := waiter.Wait()
			results[i].Err = err
			results[i].Elapsed = time.Since(unitStart)
			p.logUnit(results[i])
		})
	}
	wg.Wait()
	return results
}

func (p *Pool) logUnit(result UnitResult) {
	logger := p.logger.With(logging.String(logging.FieldWorker, result.Unit.ID))
	if result.Err != nil {
		logging.ErrorWithContext(logger, "worker stopped with error", "worker_failed",
			logging.Error(result.Err),
			logging.Duration("elapsed", result.Elapsed),
			logging.String(logging.FieldErrorHint, "check the worker's log lines above for the cause"),
		)
		return
	}
	logger.Debug("worker exited",
		logging.String(logging.FieldEventType, "worker_exited"),
		logging.Duration("elapsed", result.Elapsed),
	)
}
