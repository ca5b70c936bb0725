package writer

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mdgen/dumper/metrics"
	"github.com/mdgen/dumper/record"
)

// sink is one of the three serialized output channels. It implements the
// slot-wise ticket lock described by the spec: a worker holding id k blocks
// until nextID == k, then appends and advances the cursor, broadcasting to
// wake every other worker waiting on this sink.
//
// nextID is stored atomically so peekNextID (used by the buffer-or-write
// decision, which must never be taken while holding a sink mutex) can read
// it without acquiring mu. It is still only ever mutated while mu is held,
// so the mutex/cond pair's ordering guarantees are unaffected.
type sink struct {
	name string

	mu     sync.Mutex
	cond   *sync.Cond
	nextID atomic.Uint64

	appender     Appender
	indexer      Indexer
	indexEnabled bool

	writeErrs  metrics.Counter
	indexErrs  metrics.Counter
	writeHisto metrics.Histogram
}

func newSink(name string, appender Appender, indexer Indexer, indexEnabled bool, provider metrics.Provider) *sink {
	s := &sink{
		name:         name,
		appender:     appender,
		indexer:      indexer,
		indexEnabled: indexEnabled,
		writeErrs:    provider.Counter("dumper.sink." + name + ".write_errors"),
		indexErrs:    provider.Counter("dumper.sink." + name + ".index_errors"),
		writeHisto:   provider.Histogram("dumper.sink."+name+".write_seconds", metrics.WithUnit("s")),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// write blocks until it is id's turn on this sink, appends the chunk, and
// (when enabled) inserts rec into the auxiliary index, in that order, all
// under the same lock. It always advances nextID before returning, even if
// the append or insert failed — per spec, write-time errors are logged and
// skipped, never aborting the sink.
func (s *sink) write(id uint64, chunk []byte, rec *record.PackageRecord) {
	s.mu.Lock()
	for s.nextID.Load() != id {
		s.cond.Wait()
	}

	start := time.Now()

	if err := s.appendSafely(chunk); err != nil {
		s.writeErrs.Add(1)
		log.Error().Err(err).Str("sink", s.name).Uint64("id", id).Msg("append failed, skipping")
	}

	if s.indexEnabled && s.indexer != nil {
		if err := s.insertSafely(rec); err != nil {
			s.indexErrs.Add(1)
			log.Error().Err(err).Str("sink", s.name).Uint64("id", id).Msg("index insert failed, skipping")
		}
	}

	s.writeHisto.Record(time.Since(start).Seconds())

	s.nextID.Store(id + 1)
	s.cond.Broadcast()
	s.mu.Unlock()
}

// advance moves the cursor past id without writing anything. Used on the
// fail path so later tasks are not deadlocked behind a failed one.
func (s *sink) advance(id uint64) {
	s.mu.Lock()
	for s.nextID.Load() != id {
		s.cond.Wait()
	}
	s.nextID.Store(id + 1)
	s.cond.Broadcast()
	s.mu.Unlock()
}

// peekNextID reads the current cursor value without acquiring mu. The value
// may be stale by the time the caller acts on it: Writer.Submit reads it
// while holding the reorder-buffer mutex, so a drain that follows a cursor
// advance always sees an entry buffered against the older value, and every
// write re-checks the cursor under mu before appending.
func (s *sink) peekNextID() uint64 {
	return s.nextID.Load()
}

func (s *sink) appendSafely(chunk []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicToErr(r)
		}
	}()
	return s.appender.Append(chunk)
}

func (s *sink) insertSafely(rec *record.PackageRecord) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicToErr(r)
		}
	}()
	return s.indexer.Insert(rec)
}

// panicToErr converts a recovered panic value into an error so a panicking
// Appender/Indexer never takes down a sink while it holds the sink's mutex.
func panicToErr(r interface{}) error {
	return fmt.Errorf("panic: %v", r)
}
