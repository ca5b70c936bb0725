package writer

import (
	"sync"

	"github.com/mdgen/dumper/metrics"
	"github.com/mdgen/dumper/record"
)

// Sinks bundles the three per-sink backends the caller supplies: an
// Appender plus an optional Indexer for each of primary, filelists, and
// other.
type Sinks struct {
	Primary, Filelists, Other SinkConfig
}

// SinkConfig configures one sink.
type SinkConfig struct {
	Appender    Appender
	Indexer     Indexer
	EnableIndex bool
}

// Writer owns the three serialized sinks and the shared reorder buffer that
// bounds how much out-of-order work can accumulate before the primary
// sink. Write order across sinks for a single RenderedPackage is always
// primary -> filelists -> other, per spec: this guarantees no sink can be
// stalled behind a later one on the same task, and bounds per-task held
// locks to one at a time.
type Writer struct {
	primary, filelists, other *sink

	bufMu  sync.Mutex
	buffer *ReorderBuffer

	bufferDepth metrics.UpDownCounter
}

// New constructs a Writer. provider defaults to a no-op if nil.
func New(sinks Sinks, provider metrics.Provider) *Writer {
	if provider == nil {
		provider = metrics.NewNoopProvider()
	}
	return &Writer{
		primary:     newSink("primary", sinks.Primary.Appender, sinks.Primary.Indexer, sinks.Primary.EnableIndex, provider),
		filelists:   newSink("filelists", sinks.Filelists.Appender, sinks.Filelists.Indexer, sinks.Filelists.EnableIndex, provider),
		other:       newSink("other", sinks.Other.Appender, sinks.Other.Indexer, sinks.Other.EnableIndex, provider),
		buffer:      NewReorderBuffer(MaxBufferCapacity),
		bufferDepth: provider.UpDownCounter("dumper.writer.buffer_depth"),
	}
}

// PrimaryNextID reports the primary sink's current cursor. It is advisory
// only — see sink.peekNextID.
func (w *Writer) PrimaryNextID() uint64 { return w.primary.peekNextID() }

// BufferLen reports how many entries are currently parked in the reorder buffer.
func (w *Writer) BufferLen() int {
	w.bufMu.Lock()
	defer w.bufMu.Unlock()
	return w.buffer.Len()
}

// Submit implements spec §4.5 steps 3-5 and §4.7's state transitions out of
// "rendered": it decides whether rp can be parked in the reorder buffer or
// must be written now, writes it (and drains any now-eligible buffered
// entries) when appropriate, and reports whether rp was buffered.
//
// isLastTask must be true only for the task whose id is totalTasks-1: the
// last task always bypasses the buffer so the run can terminate even if the
// buffer has spare capacity.
func (w *Writer) Submit(rp record.RenderedPackage, isLastTask bool) (buffered bool) {
	w.bufMu.Lock()
	primaryNext := w.primary.peekNextID()
	canBuffer := primaryNext != rp.ID && !isLastTask && w.buffer.Insert(rp)
	w.bufMu.Unlock()

	if canBuffer {
		w.bufferDepth.Add(1)
		return true
	}

	w.writeAll(rp)
	w.drain()
	return false
}

// AdvanceOnFailure implements the fail path (spec §4.5): when a task could
// not be rendered, all three sinks' cursors must still advance past its id
// so later tasks are not deadlocked. Per spec §9's second open question,
// this always acquires each sink's mutex unconditionally rather than
// short-circuiting on an unlocked pre-check.
func (w *Writer) AdvanceOnFailure(id uint64) {
	w.primary.advance(id)
	w.filelists.advance(id)
	w.other.advance(id)
	w.drain()
}

func (w *Writer) writeAll(rp record.RenderedPackage) {
	w.primary.write(rp.ID, rp.Primary, rp.Record)
	w.filelists.write(rp.ID, rp.Filelists, rp.Record)
	w.other.write(rp.ID, rp.Other, rp.Record)
}

// drain repeatedly pops and writes any buffered entry whose id matches the
// primary sink's current cursor, per spec §4.5 step 5. It stops when the
// buffer is empty or its head is ahead of the primary cursor.
func (w *Writer) drain() {
	for {
		next := w.primary.peekNextID()

		w.bufMu.Lock()
		rp, ok := w.buffer.PopIfHead(next)
		w.bufMu.Unlock()

		if !ok {
			return
		}
		w.bufferDepth.Add(-1)
		w.writeAll(rp)
	}
}
