package pool

import "sync"

// NewDynamic is a dynamic-size pool of workers, used by dumper.Run when
// Config.WorkerCount is 0: the number of concurrent dumperWorker instances
// tracks however many tasks are in flight instead of a fixed cap. It is a
// thin wrapper around sync.Pool.
func NewDynamic(newFn func() interface{}) Pool {
	return &sync.Pool{New: newFn}
}
