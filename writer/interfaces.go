// Package writer implements the ordered, parallel emission subsystem: three
// independent serialized sinks (primary, filelists, other), each gated by a
// slot-wise ticket lock on its own cursor, fed by a shared bounded reorder
// buffer that lets out-of-order workers return to the pool instead of
// blocking on the primary sink.
package writer

import "github.com/mdgen/dumper/record"

// MaxBufferCapacity bounds the shared reorder buffer. It is a design
// constant, not a runtime configuration knob.
const MaxBufferCapacity = 20

// Appender is the per-sink serial output consumer. Append errors are
// logged and skipped; they never abort the sink.
type Appender interface {
	Append(chunk []byte) error
}

// Indexer is the optional per-sink auxiliary indexed store. Inserts happen
// under the same lock, and in the same order, as the sink's chunk appends.
type Indexer interface {
	Insert(rec *record.PackageRecord) error
}

// AppenderFunc adapts a function to an Appender.
type AppenderFunc func(chunk []byte) error

func (f AppenderFunc) Append(chunk []byte) error { return f(chunk) }

// IndexerFunc adapts a function to an Indexer.
type IndexerFunc func(rec *record.PackageRecord) error

func (f IndexerFunc) Insert(rec *record.PackageRecord) error { return f(rec) }
