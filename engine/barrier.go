package engine

import "sync"

// barrier is a reusable rendezvous point of fixed arity: the N'th arrival
// releases all N waiters and the barrier is immediately ready for its next
// round (spec.md §4.7, §5). There is no direct library precedent for this in
// the reference stack; it is built directly on sync primitives (see
// DESIGN.md).
type barrier struct {
	n     int
	mu    sync.Mutex
	count int
	ch    chan struct{}
}

func newBarrier(n int) *barrier {
	return &barrier{n: n, ch: make(chan struct{})}
}

// wait blocks until n parties (across all callers) have called wait, then
// releases them all. Used by the orchestrator and by workers at the join
// barrier, neither of which needs a cancellable wait.
func (b *barrier) wait() {
	b.mu.Lock()
	ch := b.ch
	b.count++
	if b.count == b.n {
		b.count = 0
		b.ch = make(chan struct{})
		b.mu.Unlock()
		close(ch)
		return
	}
	b.mu.Unlock()
	<-ch
}

// waitContext behaves like wait but also returns false if quit is closed
// before the round completes; the caller's arrival has already been counted
// and is not withdrawn. This is the run
// barrier's third "exit" state workers observe at teardown (spec.md §9
// design note): the orchestrator simply stops calling wait and closes quit
// instead, and every worker blocked here unblocks and returns.
func (b *barrier) waitContext(quit <-chan struct{}) bool {
	b.mu.Lock()
	ch := b.ch
	b.count++
	if b.count == b.n {
		b.count = 0
		b.ch = make(chan struct{})
		b.mu.Unlock()
		close(ch)
		return true
	}
	b.mu.Unlock()
	select {
	case <-ch:
		return true
	case <-quit:
		return false
	}
}
