package dumper

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/mdgen/dumper/cache"
	"github.com/mdgen/dumper/extract"
	"github.com/mdgen/dumper/metrics"
	"github.com/mdgen/dumper/pool"
	"github.com/mdgen/dumper/record"
	"github.com/mdgen/dumper/writer"
)

// Run dispatches every task to a worker pool, renders each into the three
// XML chunks, and submits the results to w in input order. It returns once
// every dispatched task has been finalized.
//
// Per spec §5, Run does not attempt partial-task cancellation: ctx is only
// consulted at dispatch granularity. If ctx is canceled before every task
// has been dispatched, Run stops dispatching new tasks, waits for in-flight
// ones to finish, and returns ErrCanceled; any task never dispatched is
// left unprocessed and its sinks' cursors will never advance past it.
func Run(
	ctx context.Context,
	cfg Config,
	tasks []record.Task,
	extractor extract.Extractor,
	renderer extract.Renderer,
	c *cache.Cache,
	sinks writer.Sinks,
) error {
	if len(tasks) == 0 {
		return ErrNoTasks
	}

	provider := cfg.MetricsProvider
	if provider == nil {
		provider = metrics.NewNoopProvider()
	}

	sinks.Primary.EnableIndex = cfg.EnablePrimaryIndex
	sinks.Filelists.EnableIndex = cfg.EnableFilelistsIndex
	sinks.Other.EnableIndex = cfg.EnableOtherIndex

	w := writer.New(sinks, provider)

	rm := runMetrics{
		cacheHit:   provider.Counter("dumper.cache_hit"),
		cacheMiss:  provider.Counter("dumper.cache_miss"),
		taskFailed: provider.Counter("dumper.task_failed"),
		buffered:   provider.Counter("dumper.buffered"),
	}

	newWorker := func() interface{} {
		return &dumperWorker{extractor: extractor, renderer: renderer, cache: c, cfg: cfg, metrics: rm}
	}

	var p pool.Pool
	if cfg.WorkerCount > 0 {
		p = pool.NewFixed(cfg.WorkerCount, newWorker)
	} else {
		p = pool.NewDynamic(newWorker)
	}

	lastID := tasks[len(tasks)-1].ID

	var wg sync.WaitGroup
	var canceled atomic.Bool

	for _, task := range tasks {
		if ctx.Err() != nil {
			canceled.Store(true)
			break
		}

		task := task
		raw := p.Get()

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer p.Put(raw)

			dw := raw.(*dumperWorker)
			rp, err := dw.process(ctx, task)
			if err != nil {
				rm.taskFailed.Add(1)
				log.Warn().Err(err).Uint64("task_id", task.ID).Msg("task failed, advancing cursors without writing")
				w.AdvanceOnFailure(task.ID)
				return
			}

			if w.Submit(rp, task.ID == lastID) {
				rm.buffered.Add(1)
			}
		}()
	}

	wg.Wait()

	if canceled.Load() {
		return ErrCanceled
	}
	return nil
}
