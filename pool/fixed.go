package pool

// fixed is a bounded pool: at most capacity worker instances ever exist at
// once. dumper.Run uses this when Config.WorkerCount > 0, so the number of
// in-flight dumperWorker instances never exceeds the configured worker
// count regardless of how many tasks are dispatched.
type fixed struct {
	available chan interface{}
	all       chan interface{}
	buf       chan interface{}
	newFn     func() interface{}
}

// NewFixed constructs a Pool that lazily creates up to capacity instances
// via newFn, then recycles them; a Get beyond capacity blocks until a Put.
func NewFixed(capacity uint, newFn func() interface{}) Pool {
	return &fixed{
		available: make(chan interface{}, capacity),
		all:       make(chan interface{}, capacity),
		buf:       make(chan interface{}, 1024),
		newFn:     newFn,
	}
}

func (p *fixed) Get() interface{} {
	select {
	case el := <-p.available:
		return el

	case el := <-p.buf:
		return el

	default:
		var el interface{}

		if len(p.all) < cap(p.all) {
			el = p.newFn()
		} else {
			return <-p.available
		}

		select {
		case p.all <- el:
		default:
			return <-p.available
		}
		return el
	}
}

func (p *fixed) Put(el interface{}) {
	select {
	case p.available <- el:
	default:
	}
}
