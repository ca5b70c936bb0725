// Package pool provides a small worker-instance pool abstraction used to
// bound how many concurrent dumper workers exist at once, and to let a
// finished worker's allocation be reused by the next dispatched task
// instead of discarded.
package pool

// Pool hands out reusable worker instances. Get blocks until an instance
// is available or a new one can be created; Put returns it for the next
// caller. A caller that calls Get more times than it calls Put will stall
// every later Get once a fixed pool's capacity is exhausted.
type Pool interface {
	// Get returns a worker from the pool.
	Get() interface{}

	// Put returns a worker back to the pool.
	Put(interface{})
}
