package sched

import (
	"sync"
	"sync/atomic"

	"github.com/Creativesource-Sys/synapsys/core/actor"
)

// queue is one worker's run queue: multi-producer (Enqueue, re-enqueue,
// steal victims) and multi-consumer (owner pop, thieves). A plain mutex is
// fine here; queues hold executor references, not messages, and stay short.
type queue struct {
	mu    sync.Mutex
	items []*actor.Executor

	hits atomic.Int64 // successful polls, owner and thieves alike
}

func newQueue() *queue {
	return &queue{items: make([]*actor.Executor, 0, 16)}
}

// offer appends ex. Queues are unbounded; offer always succeeds.
func (q *queue) offer(ex *actor.Executor) {
	q.mu.Lock()
	q.items = append(q.items, ex)
	q.mu.Unlock()
}

// poll removes and returns the head executor, or nil.
func (q *queue) poll() *actor.Executor {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	ex := q.items[0]
	copy(q.items, q.items[1:])
	q.items[len(q.items)-1] = nil
	q.items = q.items[:len(q.items)-1]
	q.hits.Add(1)
	return ex
}

// removeFunc drops every entry matching pred and returns how many were
// dropped.
func (q *queue) removeFunc(pred func(*actor.Executor) bool) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.items[:0]
	removed := 0
	for _, ex := range q.items {
		if pred(ex) {
			removed++
			continue
		}
		kept = append(kept, ex)
	}
	for i := len(kept); i < len(q.items); i++ {
		q.items[i] = nil
	}
	q.items = kept
	return removed
}

// drain removes and returns all pending entries.
func (q *queue) drain() []*actor.Executor {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = make([]*actor.Executor, 0, 16)
	return out
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// pollHits returns how many polls on this queue returned an executor.
func (q *queue) pollHits() int64 { return q.hits.Load() }
