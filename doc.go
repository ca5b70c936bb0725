// Package dumper implements the parallel package-dumping core of a
// repository metadata generator: a worker pool extracts and renders
// package metadata concurrently, while an ordered writer emits the
// results to three streams (primary, filelists, other) in strict input
// order, buffering a bounded amount of out-of-order work so workers are
// not serialized behind a slow head-of-line task.
//
// The core is deliberately small: Run, Config, and the five collaborators
// (the extract.Extractor, extract.Renderer, writer.Appender, and
// writer.Indexer interfaces, and the cache.Cache type) are the entire
// public contract. Package
// file formats, XML schemas, and the indexed store's on-disk layout are
// not part of it — see the record, extract, writer, cache, and store
// packages for default implementations suitable for running the core end
// to end.
//
// The ordering and buffering invariants in Run and writer.Writer only
// show data races under concurrent load, so tests in this module and in
// package writer are meant to be run with -race.
package dumper
