package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type worker struct{ id int }

func TestFixedPool_TableDriven(t *testing.T) {
	type args struct {
		capacity uint
	}
	type want struct {
		newCountMin int
		newCountMax int
	}

	tests := []struct {
		name string
		args args
		run  func(t *testing.T, p Pool, newCount *int32) (gotCreated int)
		want want
	}{
		{
			name: "Get creates up to capacity via newFn; then blocks until Put",
			args: args{capacity: 2},
			run: func(t *testing.T, p Pool, newCount *int32) int {
				w1 := p.Get().(*worker)
				w2 := p.Get().(*worker)
				if w1 == nil || w2 == nil || w1 == w2 {
					t.Fatalf("expected two distinct workers, got %v and %v", w1, w2)
				}

				gotCh := make(chan any, 1)
				go func() { gotCh <- p.Get() }()

				select {
				case <-gotCh:
					t.Fatalf("third Get should block until Put; returned early")
				case <-time.After(100 * time.Millisecond):
					// still blocked as expected
				}

				p.Put(w1)

				select {
				case got := <-gotCh:
					if got != w1 {
						t.Fatalf("expected blocked Get to receive reused worker w1; got %v", got)
					}
				case <-time.After(200 * time.Millisecond):
					t.Fatalf("blocked Get did not resume after Put")
				}

				return int(atomic.LoadInt32(newCount))
			},
			want: want{newCountMin: 2, newCountMax: 2},
		},
		{
			name: "Put then Get returns the same instance",
			args: args{capacity: 1},
			run: func(t *testing.T, p Pool, newCount *int32) int {
				w := p.Get()
				p.Put(w)
				w2 := p.Get()
				if w2 != w {
					t.Fatalf("expected same instance after Put/Get; got %v vs %v", w, w2)
				}
				return int(atomic.LoadInt32(newCount))
			},
			want: want{newCountMin: 1, newCountMax: 1},
		},
		{
			name: "Concurrent Get/Put never exceeds capacity new workers in flight",
			args: args{capacity: 5},
			run: func(t *testing.T, p Pool, newCount *int32) int {
				const goroutines = 20
				var wg sync.WaitGroup
				wg.Add(goroutines)

				for i := 0; i < goroutines; i++ {
					go func() {
						defer wg.Done()
						w := p.Get()
						time.Sleep(5 * time.Millisecond)
						p.Put(w)
					}()
				}
				wg.Wait()
				return int(atomic.LoadInt32(newCount))
			},
			want: want{newCountMin: 1, newCountMax: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var counter int32
			newFn := func() interface{} {
				id := int(atomic.AddInt32(&counter, 1))
				return &worker{id: id}
			}

			p := NewFixed(tt.args.capacity, newFn)

			created := tt.run(t, p, &counter)

			if created < tt.want.newCountMin || created > tt.want.newCountMax {
				t.Fatalf("newFn calls = %d, want in [%d..%d]", created, tt.want.newCountMin, tt.want.newCountMax)
			}
		})
	}
}
