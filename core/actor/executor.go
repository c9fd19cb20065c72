package actor

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

type (
	// Receiver is the actor contract. OnReceive is handed one message and
	// the current state and returns the next state plus a reply. The
	// runtime never inspects any of the three values.
	//
	// OnReceive is called by exactly one goroutine at a time; no locking is
	// required inside it.
	Receiver interface {
		OnReceive(msg any, state any) (next any, reply any, err error)
	}

	// ReceiverFunc adapts a plain function to [Receiver].
	ReceiverFunc func(msg any, state any) (any, any, error)

	// ReplySink receives the reply of every successfully processed message
	// whose reply is non-nil. It must be safe for concurrent use; a
	// panicking sink is absorbed.
	ReplySink func(actorID string, msg any, reply any)
)

func (f ReceiverFunc) OnReceive(msg any, state any) (any, any, error) { return f(msg, state) }

// ExecutorOptions configures a new Executor. Zero values get defaults.
type ExecutorOptions struct {
	Log     *slog.Logger
	Metrics ExecutorMetrics
	Sink    ReplySink
	Tasks   TaskRunner
	// OnSuspend is called with a snapshot of the state each time the
	// executor transitions into the suspended state. It runs on the task
	// runner, off the scheduler path. Persistence bookkeeping hooks in
	// here.
	OnSuspend func(state any)
}

// Executor binds one actor to one mailbox plus the flags the scheduler
// drives. At any instant an executor sits in at most one worker queue, and
// at most one processing episode is in flight for it.
type Executor struct {
	id      string
	recv    Receiver
	mailbox *Mailbox

	log     *slog.Logger
	metrics ExecutorMetrics
	sink    ReplySink
	tasks   TaskRunner

	onSuspend func(state any)

	mu    sync.Mutex // guards state for snapshot readers
	state any

	active    atomic.Bool // administrative pause flag
	suspended atomic.Bool // parked between processing episodes
	alive     atomic.Bool // cleared on removal
	scheduled atomic.Bool // in a worker queue or mid-episode
}

// NewExecutor creates an executor for the given actor id, receive function
// and initial state. The executor starts active, resumed, and unscheduled.
func NewExecutor(id string, recv Receiver, initialState any, opts ExecutorOptions) *Executor {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NopExecutorMetrics()
	}

	e := &Executor{
		id:        id,
		recv:      recv,
		mailbox:   NewMailbox(),
		log:       log.With(slog.String("actor_id", id)),
		metrics:   metrics,
		sink:      opts.Sink,
		tasks:     opts.Tasks,
		onSuspend: opts.OnSuspend,
		state:     initialState,
	}
	e.active.Store(true)
	e.alive.Store(true)
	return e
}

func (e *Executor) ID() string { return e.id }

// Post appends msg to the mailbox. Safe from any goroutine.
func (e *Executor) Post(msg any) {
	e.mailbox.Post(msg)
	e.metrics.MailboxDepth(e.id, int(e.mailbox.Len()))
}

// DequeueMessage removes the next pending message, if any. Called only from
// the processing episode that owns the executor.
func (e *Executor) DequeueMessage() (any, bool) {
	return e.mailbox.Dequeue()
}

func (e *Executor) HasMessages() bool { return e.mailbox.HasMessages() }

// MailboxLen is an approximate count of pending messages.
func (e *Executor) MailboxLen() int64 { return e.mailbox.Len() }

// IsActive reports whether the executor is eligible to run. Pause clears
// it; the scheduler stops the current episode at the next message boundary.
func (e *Executor) IsActive() bool { return e.active.Load() }

func (e *Executor) Pause()  { e.active.Store(false) }
func (e *Executor) Resume() { e.active.Store(true) }

// Alive reports whether the executor has not been removed. The scheduler
// consults it before re-enqueueing so removed actors do not leak back into
// the queues.
func (e *Executor) Alive() bool { return e.alive.Load() }

// Kill marks the executor removed. An in-flight episode finishes normally
// but is not re-enqueued.
func (e *Executor) Kill() { e.alive.Store(false) }

// Suspended reports whether the executor is parked between episodes.
func (e *Executor) Suspended() bool { return e.suspended.Load() }

// SuspendExecution parks the executor. Idempotent: only the first call of a
// suspend/resume cycle has effects beyond the flag. The OnSuspend hook runs
// asynchronously so the scheduler path stays cheap.
func (e *Executor) SuspendExecution() {
	if !e.suspended.CompareAndSwap(false, true) {
		return
	}
	if e.onSuspend == nil {
		return
	}
	st := e.Snapshot()
	if e.tasks != nil {
		e.tasks.Run(func() { e.onSuspend(st) })
		return
	}
	go e.onSuspend(st)
}

// ResumeExecution unparks the executor. Idempotent. Called both by
// Scheduler.Enqueue and at the head of a processing episode; the double
// call is harmless.
func (e *Executor) ResumeExecution() {
	e.suspended.CompareAndSwap(true, false)
}

// TrySchedule attempts to claim the executor for queue placement. It
// returns true at most once per dormant period; the caller must then hand
// the executor to the scheduler.
func (e *Executor) TrySchedule() bool {
	return e.scheduled.CompareAndSwap(false, true)
}

// ClearScheduled marks the executor dormant again after an episode drained
// the mailbox. The caller re-checks HasMessages afterwards to close the
// race with a concurrent Post.
func (e *Executor) ClearScheduled() {
	e.scheduled.Store(false)
}

// Scheduled reports whether the executor is queued or mid-episode.
func (e *Executor) Scheduled() bool { return e.scheduled.Load() }

// Snapshot returns the current state. The value itself is shared with the
// actor; treat it as read-only.
func (e *Executor) Snapshot() any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Executor) setState(st any) {
	e.mu.Lock()
	e.state = st
	e.mu.Unlock()
}

// ProcessMessage runs one message through the receive function. A fault in
// user code (error return or panic) drops that message, keeps the previous
// state, and leaves the actor scheduled. Infallible from the scheduler's
// perspective.
func (e *Executor) ProcessMessage(msg any) {
	tmr := e.metrics.MessageDuration()
	defer tmr.ObserveDuration()

	defer func() {
		if rec := recover(); rec != nil {
			e.metrics.MessagePanic()
			e.metrics.MessageProcessed(false)
			e.log.Error("receive panicked, message dropped",
				slog.Any("recovered", rec),
			)
		}
	}()

	next, reply, err := e.recv.OnReceive(msg, e.Snapshot())
	if err != nil {
		e.metrics.MessageProcessed(false)
		e.log.Error("receive failed, message dropped", slog.Any("error", err))
		return
	}

	e.setState(next)
	e.metrics.MessageProcessed(true)

	if reply != nil && e.sink != nil {
		e.deliver(msg, reply)
	}
}

func (e *Executor) deliver(msg any, reply any) {
	defer func() {
		if rec := recover(); rec != nil {
			e.log.Error("reply sink panicked", slog.Any("recovered", rec))
		}
	}()
	e.sink(e.id, msg, reply)
}
