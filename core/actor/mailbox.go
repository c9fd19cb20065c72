package actor

import (
	"sync"
	"sync/atomic"
)

// mboxNode is a single link in the mailbox list. Nodes are pooled so a
// post/dequeue pair does not allocate.
type mboxNode struct {
	next atomic.Pointer[mboxNode]
	msg  any
}

var mboxNodePool = sync.Pool{New: func() any { return new(mboxNode) }}

// Mailbox is an unbounded multi-producer/single-consumer FIFO.
//
// Any goroutine may Post concurrently; only the one processing episode that
// currently owns the executor may Dequeue. Messages posted by a single
// sender are dequeued in post order. Backpressure is not a mailbox concern.
//
// Under producer contention there is a short window between the tail swap
// and the link store in which Dequeue can miss a message that HasMessages
// already counts. Callers treat such a miss as "empty for now"; the message
// is never lost.
type Mailbox struct {
	head atomic.Pointer[mboxNode] // consumer side
	_    [64]byte
	tail atomic.Pointer[mboxNode] // producer side
	_    [64]byte
	size atomic.Int64
}

func NewMailbox() *Mailbox {
	dummy := mboxNodePool.Get().(*mboxNode)
	dummy.next.Store(nil)
	dummy.msg = nil

	m := &Mailbox{}
	m.head.Store(dummy)
	m.tail.Store(dummy)
	return m
}

// Post appends msg. Never blocks.
func (m *Mailbox) Post(msg any) {
	n := mboxNodePool.Get().(*mboxNode)
	n.next.Store(nil)
	n.msg = msg

	prev := m.tail.Swap(n)
	prev.next.Store(n)
	m.size.Add(1)
}

// Dequeue removes and returns the head message. The second return is false
// when the mailbox is empty (or mid-link, see type comment). Single
// consumer only.
func (m *Mailbox) Dequeue() (any, bool) {
	head := m.head.Load()
	next := head.next.Load()
	if next == nil {
		return nil, false
	}

	m.head.Store(next)
	msg := next.msg
	next.msg = nil // value is carried by the new dummy slot; drop the ref

	head.next.Store(nil)
	mboxNodePool.Put(head)

	m.size.Add(-1)
	return msg, true
}

// HasMessages reports whether any posted message has not been dequeued yet.
func (m *Mailbox) HasMessages() bool { return m.size.Load() > 0 }

// Len returns the current number of pending messages. O(1), approximate
// under concurrent producers; intended for gauges.
func (m *Mailbox) Len() int64 { return m.size.Load() }
