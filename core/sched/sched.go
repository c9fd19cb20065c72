package sched

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Creativesource-Sys/synapsys/core/actor"
)

const (
	// DefaultMaxReductions is the per-episode reduction budget.
	DefaultMaxReductions = 2000
	// DefaultProcessTimeThreshold is the wall time a message may take
	// before it is surcharged.
	DefaultProcessTimeThreshold = 10 * time.Millisecond
	// DefaultTimePenaltyFactor scales the surcharge for slow messages.
	DefaultTimePenaltyFactor = 2

	idleSleep = 10 * time.Millisecond
)

// Options configures a Scheduler. Zero values get defaults.
type Options struct {
	Context context.Context
	Log     *slog.Logger
	Metrics SchedulerMetrics

	// MaxReductions is the reduction budget of one processing episode.
	MaxReductions int
	// NumWorkers is the number of worker goroutines and queues.
	// Defaults to runtime.NumCPU().
	NumWorkers int
	// ProcessTimeThreshold is the per-message wall time above which
	// reductions are surcharged.
	ProcessTimeThreshold time.Duration
	// TimePenaltyFactor multiplies the surcharge of slow messages.
	TimePenaltyFactor int

	// pickQueue selects the target queue for Enqueue. Tests inject a
	// deterministic pick; the default is uniformly random.
	pickQueue func(n int) int
}

// Scheduler owns the worker queues and the workers draining them.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger
	m      SchedulerMetrics

	queues []*queue
	pick   func(n int) int

	maxReductions int
	threshold     time.Duration
	penalty       int

	closed atomic.Bool
	wg     sync.WaitGroup
}

// New constructs the queues and launches the workers. The scheduler runs
// until Close or until the configured context is cancelled.
func New(opts Options) *Scheduler {
	s := newScheduler(opts)
	s.start()
	return s
}

// newScheduler builds a scheduler without starting the workers. Tests use
// this to inspect queue placement before anything is drained.
func newScheduler(opts Options) *Scheduler {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = NopSchedulerMetrics()
	}
	if opts.MaxReductions <= 0 {
		opts.MaxReductions = DefaultMaxReductions
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = runtime.NumCPU()
	}
	if opts.ProcessTimeThreshold <= 0 {
		opts.ProcessTimeThreshold = DefaultProcessTimeThreshold
	}
	if opts.TimePenaltyFactor <= 0 {
		opts.TimePenaltyFactor = DefaultTimePenaltyFactor
	}
	if opts.pickQueue == nil {
		// rand/v2 keeps its state per P, so there is no shared RNG lock
		// on this path.
		opts.pickQueue = rand.IntN
	}

	ctx, cancel := context.WithCancel(opts.Context)

	queues := make([]*queue, opts.NumWorkers)
	for i := range queues {
		queues[i] = newQueue()
	}

	return &Scheduler{
		ctx:           ctx,
		cancel:        cancel,
		log:           opts.Log,
		m:             opts.Metrics,
		queues:        queues,
		pick:          opts.pickQueue,
		maxReductions: opts.MaxReductions,
		threshold:     opts.ProcessTimeThreshold,
		penalty:       opts.TimePenaltyFactor,
	}
}

func (s *Scheduler) start() {
	for i := range s.queues {
		s.wg.Add(1)
		go s.runWorker(i)
	}
}

// NumWorkers returns the number of worker queues.
func (s *Scheduler) NumWorkers() int { return len(s.queues) }

// Enqueue resumes ex and offers it to a uniformly random worker queue.
// There is no backpressure; the offer always succeeds. Enqueues after
// Close are dropped.
func (s *Scheduler) Enqueue(ex *actor.Executor) {
	if s.closed.Load() {
		return
	}

	ex.ResumeExecution()

	i := s.pick(len(s.queues))
	q := s.queues[i]
	q.offer(ex)
	s.m.QueueDepth(i, q.len())
}

// RemoveActor scans every queue and drops all entries for the given actor
// id. It returns whether at least one entry was removed. An executor whose
// episode is currently in flight is not touched; it simply is not
// re-enqueued once its Kill flag is set.
func (s *Scheduler) RemoveActor(id string) bool {
	removed := 0
	for i, q := range s.queues {
		n := q.removeFunc(func(ex *actor.Executor) bool { return ex.ID() == id })
		if n > 0 {
			removed += n
			s.m.QueueDepth(i, q.len())
		}
	}
	if removed == 0 {
		s.log.Warn("remove: actor not queued", slog.String("actor_id", id))
		return false
	}
	return true
}

// CleanAllWorkerQueues drops every pending executor from every queue.
// In-flight episodes are not cancelled.
func (s *Scheduler) CleanAllWorkerQueues() {
	for i, q := range s.queues {
		dropped := q.drain()
		for _, ex := range dropped {
			ex.ClearScheduled()
		}
		s.m.QueueDepth(i, 0)
	}
}

// Close stops accepting enqueues, purges the queues, and waits for the
// workers to finish their current episodes.
func (s *Scheduler) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.CleanAllWorkerQueues()
}

// runWorker is the worker loop: pop own queue, steal when empty, sleep when
// there is nothing to steal. Never terminates during scheduler lifetime.
func (s *Scheduler) runWorker(id int) {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		ex := s.queues[id].poll()
		if ex == nil {
			ex = s.stealWork(id)
		}
		if ex == nil {
			select {
			case <-s.ctx.Done():
				return
			case <-time.After(idleSleep):
			}
			continue
		}

		s.processActor(ex)
	}
}

// stealWork polls the other queues in index order and returns the first
// hit. Linear scan; the number of workers is tiny.
func (s *Scheduler) stealWork(id int) *actor.Executor {
	for i, q := range s.queues {
		if i == id {
			continue
		}
		if ex := q.poll(); ex != nil {
			s.m.WorkStolen(id)
			return ex
		}
	}
	return nil
}

// processActor runs one episode: dequeue, process, charge reductions, until
// the actor pauses, the mailbox drains, or the budget runs out.
func (s *Scheduler) processActor(ex *actor.Executor) {
	// Popped after removal: drop without processing.
	if !ex.Alive() {
		ex.ClearScheduled()
		return
	}

	// Enqueue already resumed the executor; repeating it here is
	// idempotent and covers callers that offer work directly.
	ex.ResumeExecution()

	reductions := 0
	messages := 0

	for ex.IsActive() && ex.HasMessages() && reductions < s.maxReductions {
		msg, ok := ex.DequeueMessage()
		if !ok {
			// lost a race with a mid-link post; treat as empty
			break
		}

		start := time.Now()
		ex.ProcessMessage(msg)
		elapsed := time.Since(start)

		reductions += s.charge(elapsed)
		messages++
	}

	// An empty mailbox wins over an exhausted budget: the executor is only
	// re-enqueued when messages remain. Removed (Kill) and paused
	// executors are never re-enqueued; is_active && has_messages is the
	// precondition for queue membership.
	if ex.Alive() && ex.IsActive() && ex.HasMessages() {
		ex.SuspendExecution()
		s.Enqueue(ex)
		s.m.Episode(messages, reductions, true)
		return
	}

	// Dormant: park the executor (which flushes state bookkeeping) and
	// release the scheduled claim. Re-check the mailbox afterwards so a
	// post racing with the drain is not lost.
	ex.SuspendExecution()
	ex.ClearScheduled()
	s.m.Episode(messages, reductions, false)

	if ex.Alive() && ex.IsActive() && ex.HasMessages() && ex.TrySchedule() {
		s.Enqueue(ex)
	}
}

// charge converts one message's wall time into reductions. Messages within
// the threshold cost one reduction; slower messages pay a surcharge
// proportional to how many thresholds they spanned.
func (s *Scheduler) charge(elapsed time.Duration) int {
	if elapsed <= s.threshold {
		return 1
	}
	return 1 + int(elapsed/s.threshold)*s.penalty
}

// queuedAnywhere reports whether any queue holds an entry for id. Test and
// introspection helper; linear scan.
func (s *Scheduler) queuedAnywhere(id string) bool {
	for _, q := range s.queues {
		q.mu.Lock()
		for _, ex := range q.items {
			if ex.ID() == id {
				q.mu.Unlock()
				return true
			}
		}
		q.mu.Unlock()
	}
	return false
}
