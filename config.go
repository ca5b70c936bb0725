package dumper

import (
	"github.com/mdgen/dumper/metrics"
	"github.com/mdgen/dumper/record"
)

// Config is the closed set of run-time knobs the dumper core accepts.
// Unlike the teacher's functional-options builder, this is a plain struct:
// every field here is named by spec, and there is no expectation of future
// unbounded growth that an options pattern would exist to absorb.
type Config struct {
	// ChecksumType selects the checksum algorithm used both to validate
	// cache freshness and, for freshly extracted packages, to compute
	// PkgID.
	ChecksumType record.ChecksumType

	// ChangelogLimit bounds how many changelog entries an Extractor reads
	// per package. Zero means "extractor default".
	ChangelogLimit int

	// SkipStat makes incremental cache lookups accept a cached record
	// without comparing it against the current file's stat info.
	SkipStat bool

	// LocationBase is passed through to every extracted or reused record
	// as LocationBase.
	LocationBase string

	// UseIncrementalCache enables the cache.Cache lookup before falling
	// back to the Extractor. When false every task is freshly extracted.
	UseIncrementalCache bool

	// EnablePrimaryIndex, EnableFilelistsIndex, and EnableOtherIndex turn on
	// the Indexer call for the corresponding sink. Run applies these onto
	// the matching writer.SinkConfig.EnableIndex before dispatching any
	// task, overriding whatever the caller set on sinks directly.
	EnablePrimaryIndex   bool
	EnableFilelistsIndex bool
	EnableOtherIndex     bool

	// WorkerCount sizes a fixed worker pool. Zero selects a dynamic,
	// sync.Pool-backed pool instead of a fixed one.
	WorkerCount uint

	// MetricsProvider receives cache hit/miss, task failure, buffering,
	// and per-sink write-latency instruments. Defaults to a no-op
	// provider when nil.
	MetricsProvider metrics.Provider
}
