package writer

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mdgen/dumper/record"
)

type recordingAppender struct {
	mu     sync.Mutex
	chunks [][]byte
}

func (a *recordingAppender) Append(chunk []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.chunks = append(a.chunks, append([]byte(nil), chunk...))
	return nil
}

func (a *recordingAppender) joined() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return bytes.Join(a.chunks, nil)
}

func newTestWriter() (*Writer, *recordingAppender, *recordingAppender, *recordingAppender) {
	pri, fil, oth := &recordingAppender{}, &recordingAppender{}, &recordingAppender{}
	w := New(Sinks{
		Primary:   SinkConfig{Appender: pri},
		Filelists: SinkConfig{Appender: fil},
		Other:     SinkConfig{Appender: oth},
	}, nil)
	return w, pri, fil, oth
}

func chunkFor(id uint64, sink string) []byte {
	return []byte(fmt.Sprintf("%s-%d;", sink, id))
}

func rendered(id uint64) record.RenderedPackage {
	return record.RenderedPackage{
		ID:        id,
		Primary:   chunkFor(id, "p"),
		Filelists: chunkFor(id, "f"),
		Other:     chunkFor(id, "o"),
		Record:    &record.PackageRecord{Name: fmt.Sprintf("pkg-%d", id)},
	}
}

// Scenario 1: single worker, three tasks, all render successfully in order.
func TestWriter_SingleWorker_InOrder(t *testing.T) {
	w, pri, fil, oth := newTestWriter()

	for id := uint64(0); id < 3; id++ {
		buffered := w.Submit(rendered(id), id+1 == 3)
		if buffered {
			t.Fatalf("id %d: in-order submission should never buffer", id)
		}
	}

	if got, want := string(pri.joined()), "p-0;p-1;p-2;"; got != want {
		t.Fatalf("primary = %q, want %q", got, want)
	}
	if got, want := string(fil.joined()), "f-0;f-1;f-2;"; got != want {
		t.Fatalf("filelists = %q, want %q", got, want)
	}
	if got, want := string(oth.joined()), "o-0;o-1;o-2;"; got != want {
		t.Fatalf("other = %q, want %q", got, want)
	}
	if w.BufferLen() != 0 {
		t.Fatalf("expected empty buffer at quiescence, got %d", w.BufferLen())
	}
}

// Scenario 3: slow head. N=5; id 0 submits last; 1,2,3 arrive first and
// buffer; id 4 (the last task) always bypasses the buffer.
func TestWriter_SlowHead_BuffersThenDrains(t *testing.T) {
	w, pri, _, _ := newTestWriter()
	const n = 5

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, id := range []uint64{1, 2, 3} {
			if buffered := w.Submit(rendered(id), false); !buffered {
				t.Errorf("id %d: expected to buffer while id 0 is outstanding", id)
			}
		}
	}()
	wg.Wait()

	if w.BufferLen() != 3 {
		t.Fatalf("BufferLen() = %d, want 3", w.BufferLen())
	}

	// id 4 is the last task: it must bypass the buffer and block on the
	// primary sink instead of being parked.
	done := make(chan struct{})
	go func() {
		w.Submit(rendered(4), true)
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("id 4 should block on primary sink until id 0 writes")
	case <-time.After(50 * time.Millisecond):
	}

	// Now id 0 arrives and writes; the drain loop should flush 1,2,3, and
	// then id 4's blocked write should complete.
	if buffered := w.Submit(rendered(0), false); buffered {
		t.Fatalf("id 0 should never buffer: it is always the primary's turn or ahead of it")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("id 4 did not complete after id 0 wrote")
	}

	if got, want := string(pri.joined()), "p-0;p-1;p-2;p-3;p-4;"; got != want {
		t.Fatalf("primary = %q, want %q", got, want)
	}
	if w.BufferLen() != 0 {
		t.Fatalf("expected drained buffer, got %d", w.BufferLen())
	}
}

// Scenario 5: full buffer back-pressure. id 0 stalls; enough completions
// arrive to fill MaxBufferCapacity; the next completer is forced onto the
// write path and blocks.
func TestWriter_FullBuffer_ForcesWritePath(t *testing.T) {
	w, _, _, _ := newTestWriter()
	const n = uint64(MaxBufferCapacity + 5)

	for id := uint64(1); id <= MaxBufferCapacity; id++ {
		if buffered := w.Submit(rendered(id), id+1 == n); !buffered {
			t.Fatalf("id %d: expected to buffer (buffer not yet full)", id)
		}
	}
	if w.BufferLen() != MaxBufferCapacity {
		t.Fatalf("BufferLen() = %d, want %d", w.BufferLen(), MaxBufferCapacity)
	}

	// The (capacity+1)th completer must be forced onto the write path and
	// block, since the buffer is full and it is not id 0's turn.
	overflowID := uint64(MaxBufferCapacity + 1)
	done := make(chan struct{})
	go func() {
		buffered := w.Submit(rendered(overflowID), overflowID+1 == n)
		if buffered {
			t.Errorf("id %d: should not buffer once capacity is reached", overflowID)
		}
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("overflow submission should block on the primary sink")
	case <-time.After(50 * time.Millisecond):
	}

	// Unblock everything: submit id 0.
	w.Submit(rendered(0), false)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("overflow submission did not complete after id 0 wrote")
	}
}

// Scenario 4: per-task failure. AdvanceOnFailure must move all three
// cursors past the failed id without writing anything for it.
func TestWriter_PerTaskFailure_AdvancesCursorsWithoutWriting(t *testing.T) {
	w, pri, fil, oth := newTestWriter()

	w.Submit(rendered(0), false)
	w.AdvanceOnFailure(1) // id 1 failed to render
	w.Submit(rendered(2), true)

	for _, a := range []*recordingAppender{pri, fil, oth} {
		joined := string(a.joined())
		if bytes.Contains([]byte(joined), []byte("-1;")) {
			t.Fatalf("expected no chunk for failed id 1, got %q", joined)
		}
	}
	if got, want := string(pri.joined()), "p-0;p-2;"; got != want {
		t.Fatalf("primary = %q, want %q", got, want)
	}
	if w.PrimaryNextID() != 3 {
		t.Fatalf("PrimaryNextID() = %d, want 3 (P2 completeness)", w.PrimaryNextID())
	}
}

// P8: the last task is never parked in the reorder buffer, even if the
// buffer has spare capacity.
func TestWriter_LastTaskNeverBuffers(t *testing.T) {
	w, _, _, _ := newTestWriter()
	w.Submit(rendered(0), false)

	done := make(chan struct{})
	go func() {
		w.Submit(rendered(1), true) // last task, id 1 is not primary's turn until id 0 already wrote above
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("last task should complete once it is its turn")
	}
	if w.BufferLen() != 0 {
		t.Fatalf("last task must never be buffered")
	}
}
