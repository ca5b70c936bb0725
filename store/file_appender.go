// Package store provides default, ambient implementations of the writer
// package's Appender and Indexer interfaces: a plain file appender and a
// buntdb-backed auxiliary index. Neither is part of the core's contract —
// spec.md explicitly scopes the indexed store's schema and the package
// file system layout out of the core — but both are needed to run the
// dumper end to end.
package store

import (
	"os"
	"sync"
)

// FileAppender appends chunks to an *os.File, serializing writes with a
// mutex even though the writer package already serializes calls per sink;
// the mutex here guards against a caller sharing one FileAppender across
// sinks by mistake.
type FileAppender struct {
	mu sync.Mutex
	f  *os.File
}

// NewFileAppender wraps an already-open file. The caller owns closing it.
func NewFileAppender(f *os.File) *FileAppender {
	return &FileAppender{f: f}
}

func (a *FileAppender) Append(chunk []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err := a.f.Write(chunk)
	return err
}
