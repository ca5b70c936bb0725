// Package record defines the value types shared across the dumper core:
// the immutable per-package Task, the extracted PackageRecord, and the
// rendered XML chunks that the ordered writer consumes.
package record

// Task is an immutable descriptor of one package to process.
// IDs are dense and assigned by the driver in input order, starting at 0.
type Task struct {
	ID          uint64
	FullPath    string
	FileName    string
	DisplayPath string
}
