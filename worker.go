package dumper

import (
	"context"
	"fmt"

	"github.com/mdgen/dumper/cache"
	"github.com/mdgen/dumper/extract"
	"github.com/mdgen/dumper/metrics"
	"github.com/mdgen/dumper/record"
)

// runMetrics bundles the counters dumper.Run emits per spec §4.5.
type runMetrics struct {
	cacheHit   metrics.Counter
	cacheMiss  metrics.Counter
	taskFailed metrics.Counter
	buffered   metrics.Counter
}

// dumperWorker turns one record.Task into a record.RenderedPackage. A
// single instance is reused across many tasks via the pool package, but
// holds no per-task state between calls to process.
type dumperWorker struct {
	extractor extract.Extractor
	renderer  extract.Renderer
	cache     *cache.Cache
	cfg       Config
	metrics   runMetrics
}

// process implements the decide-source -> render half of spec §4.7's state
// machine for a single task id. The buffer-or-write decision and the write
// itself belong to writer.Writer, driven by Run.
func (w *dumperWorker) process(ctx context.Context, task record.Task) (record.RenderedPackage, error) {
	if err := ctx.Err(); err != nil {
		return record.RenderedPackage{}, fmt.Errorf("dumper: task %d canceled: %w", task.ID, err)
	}

	rec, origin, err := w.resolveRecord(ctx, task)
	if err != nil {
		return record.RenderedPackage{}, err
	}

	primary, filelists, other, err := w.renderer.Render(ctx, rec)
	if err != nil {
		return record.RenderedPackage{}, fmt.Errorf("dumper: render task %d: %w", task.ID, err)
	}

	return record.RenderedPackage{
		ID:        task.ID,
		Primary:   primary,
		Filelists: filelists,
		Other:     other,
		Record:    rec,
		Origin:    origin,
	}, nil
}

// resolveRecord implements spec §4.2/§4.7's "decide source" step: prefer a
// fresh-enough cache entry over re-extracting the package.
func (w *dumperWorker) resolveRecord(ctx context.Context, task record.Task) (*record.PackageRecord, record.Origin, error) {
	if w.cfg.UseIncrementalCache && w.cache != nil {
		rec, ok, err := w.cache.TryReuse(task, w.cfg.ChecksumType, w.cfg.SkipStat, task.DisplayPath, w.cfg.LocationBase)
		if err != nil {
			return nil, record.Fresh, fmt.Errorf("dumper: stat task %d: %w", task.ID, err)
		}
		if ok {
			w.metrics.cacheHit.Add(1)
			return rec, record.Cached, nil
		}
	}

	w.metrics.cacheMiss.Add(1)
	rec, err := w.extractor.Extract(ctx, task.FullPath, w.cfg.ChecksumType, w.cfg.ChangelogLimit, task.DisplayPath, w.cfg.LocationBase)
	if err != nil {
		return nil, record.Fresh, fmt.Errorf("dumper: extract task %d: %w", task.ID, err)
	}
	return rec, record.Fresh, nil
}
