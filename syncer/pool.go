package syncer

import (
	"context"
	"sync"

	"github.com/yangdangfu/ftpsync/config"
	"github.com/yangdangfu/ftpsync/logger"
	"github.com/yangdangfu/ftpsync/model"
)

// TargetResult is the outcome of syncing one target.
type TargetResult struct {
	Target config.Target
	Stats  *RunStats
	Err    error
}

// Pool fans independent sync targets out to a fixed number of workers.
// Every worker drives its own FTP sessions through the shared executor;
// targets share no mutable state, and nothing orders them relative to
// each other.
type Pool struct {
	executor *Executor
	workers  int
	logger   logger.Logger
}

// NewPool creates a pool. workers <= 0 falls back to the default of 5.
func NewPool(executor *Executor, workers int, log logger.Logger) *Pool {
	if workers <= 0 {
		workers = 5
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Pool{
		executor: executor,
		workers:  workers,
		logger:   log,
	}
}

// RunAll syncs every target under the given mode and reports per-target
// results in completion order. One failed target does not stop the
// others; cancellation does.
func (p *Pool) RunAll(ctx context.Context, targets []config.Target, mode model.SyncMode) ([]TargetResult, error) {
	if _, err := model.ParseMode(string(mode)); err != nil {
		return nil, err
	}

	jobs := make(chan config.Target, len(targets))
	results := make(chan TargetResult, len(targets))

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for target := range jobs {
				select {
				case <-ctx.Done():
					results <- TargetResult{Target: target, Err: ctx.Err()}
					continue
				default:
				}

				p.logger.Debug("[Worker %d] Syncing %s:%s", workerID, target.Host, target.RemoteDir)
				stats, err := p.executor.Run(ctx, target, mode)
				results <- TargetResult{Target: target, Stats: stats, Err: err}
			}
		}(w)
	}

	for _, target := range targets {
		jobs <- target
	}
	close(jobs)

	wg.Wait()
	close(results)

	out := make([]TargetResult, 0, len(targets))
	for result := range results {
		if result.Err != nil {
			p.logger.Error("Target %s:%s failed: %v", result.Target.Host, result.Target.RemoteDir, result.Err)
		}
		out = append(out, result)
	}
	return out, nil
}
