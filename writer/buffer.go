package writer

import "github.com/mdgen/dumper/record"

// ReorderBuffer holds RenderedPackages that completed before their turn on
// the primary sink. It is bounded by capacity and keyed by id; the "sorted,
// flush-contiguous" shape is the same one the shared map+cursor bookkeeping
// in a channel-fed reorderer would use, generalized here to be driven
// externally (by the primary sink's cursor) instead of by its own goroutine.
type ReorderBuffer struct {
	entries  map[uint64]record.RenderedPackage
	capacity int
}

// NewReorderBuffer constructs an empty buffer with the given capacity.
func NewReorderBuffer(capacity int) *ReorderBuffer {
	return &ReorderBuffer{entries: make(map[uint64]record.RenderedPackage, capacity), capacity: capacity}
}

// Len reports how many entries are currently buffered.
func (b *ReorderBuffer) Len() int { return len(b.entries) }

// Full reports whether the buffer is at capacity.
func (b *ReorderBuffer) Full() bool { return len(b.entries) >= b.capacity }

// Insert adds rp to the buffer. It returns false without modifying the
// buffer if it is already full or already holds this id.
func (b *ReorderBuffer) Insert(rp record.RenderedPackage) bool {
	if b.Full() {
		return false
	}
	if _, exists := b.entries[rp.ID]; exists {
		return false
	}
	b.entries[rp.ID] = rp
	return true
}

// PopIfHead removes and returns the buffered entry for nextID if, among all
// buffered entries, nextID is the smallest id present. This mirrors the
// flush-contiguous check: only the entry the primary sink is about to
// accept can leave the buffer.
func (b *ReorderBuffer) PopIfHead(nextID uint64) (record.RenderedPackage, bool) {
	rp, ok := b.entries[nextID]
	if !ok {
		return record.RenderedPackage{}, false
	}
	for id := range b.entries {
		if id < nextID {
			// A smaller id is still buffered; nextID cannot be the head yet.
			// This should not happen if callers only ever buffer ids >= the
			// primary cursor, but guard against it defensively.
			return record.RenderedPackage{}, false
		}
	}
	delete(b.entries, nextID)
	return rp, true
}
