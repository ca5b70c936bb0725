// Package cache implements the incremental metadata cache: a lookup from
// file name to a previously computed record.PackageRecord, used to skip
// re-extracting metadata for packages that have not changed since the
// prior run.
package cache

import (
	"os"
	"sync"

	"github.com/mdgen/dumper/record"
)

// Stater abstracts os.Stat so tests can substitute synthetic file metadata
// without touching the filesystem.
type Stater interface {
	Stat(path string) (size int64, modTime int64, err error)
}

// OSStater is the default Stater, backed by os.Stat.
type OSStater struct{}

func (OSStater) Stat(path string) (int64, int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, 0, err
	}
	return fi.Size(), fi.ModTime().UnixNano(), nil
}

// Cache maps a file name to the record.PackageRecord produced for it during
// a prior run. It is read-mostly: populated once before the run starts,
// then only ever mutated in place (LocationHref/LocationBase) by at most
// one worker per entry, since each entry is claimed by at most one Task.
type Cache struct {
	mu    sync.RWMutex
	byLst map[string]*record.PackageRecord
	stat  Stater
}

// New constructs a Cache pre-populated with prior-run records keyed by file name.
func New(priorRun map[string]*record.PackageRecord) *Cache {
	return NewWithStater(priorRun, OSStater{})
}

// NewWithStater is like New but lets the caller substitute the Stater used
// by TryReuse's freshness check.
func NewWithStater(priorRun map[string]*record.PackageRecord, stater Stater) *Cache {
	c := &Cache{byLst: make(map[string]*record.PackageRecord, len(priorRun)), stat: stater}
	for k, v := range priorRun {
		c.byLst[k] = v
	}
	return c
}

// Len reports how many entries the cache currently holds.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byLst)
}

// TryReuse looks up a prior-run record for the task's file name and, unless
// skipStat is set, validates it against the current file's stat info and
// the requested checksum type. On a hit it destructively overwrites the
// record's LocationHref/LocationBase to the current run's location — the
// cache is a one-shot aid valid only for the run that calls TryReuse.
//
// A stat failure when a cache entry exists is returned as an error; the
// caller must treat it as a fatal error for this Task only and fall back
// to fresh extraction, or fail the Task, per the dumper's fail path.
func (c *Cache) TryReuse(
	t record.Task,
	checksumType record.ChecksumType,
	skipStat bool,
	href, base string,
) (*record.PackageRecord, bool, error) {
	c.mu.RLock()
	rec, ok := c.byLst[t.FileName]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if !skipStat {
		size, modTime, err := c.stat.Stat(t.FullPath)
		if err != nil {
			return nil, false, err
		}
		if modTime != rec.TimeFile.UnixNano() ||
			size != rec.SizePackage ||
			checksumType.String() != rec.ChecksumTypeName {
			return nil, false, nil
		}
	}

	rec.LocationHref = href
	rec.LocationBase = base
	return rec, true, nil
}
