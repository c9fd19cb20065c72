package system

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/Creativesource-Sys/synapsys/core/actor"
	"github.com/Creativesource-Sys/synapsys/core/sched"
	"github.com/Creativesource-Sys/synapsys/core/sf"
	"github.com/Creativesource-Sys/synapsys/internal/codec"
	"github.com/Creativesource-Sys/synapsys/ports/state"
)

var (
	ErrUnknownActor = errors.New("unknown actor")
	ErrShuttingDown = errors.New("system is shutting down")
)

// Config configures a System. Zero values get defaults; a zero Config is a
// fully in-memory, non-persistent runtime.
type Config struct {
	Context context.Context
	Log     *slog.Logger

	// Scheduler holds the scheduler tuning knobs (reduction budget,
	// worker count, surcharge threshold and factor).
	Scheduler sched.Options

	// Store, when set, persists actor state: loaded on registration of
	// actors registered WithPersistentState, flushed each time an executor
	// is parked.
	Store state.Store
	// Codec encodes state snapshots for the Store. Defaults to JSON.
	Codec codec.Codec

	// Sink receives the reply of every processed message. Defaults to
	// discarding replies.
	Sink actor.ReplySink

	// Metrics instruments message processing on all executors.
	Metrics actor.ExecutorMetrics

	// RegistryShards is the stripe count of the actor registry.
	RegistryShards int
	// MaxBackgroundTasks bounds concurrent state flushes and other
	// executor bookkeeping.
	MaxBackgroundTasks int

	// SaveTimeout bounds one state flush against the Store.
	SaveTimeout time.Duration
}

// System owns the registry and the scheduler and mediates between external
// producers and executors.
type System struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger

	sched   *sched.Scheduler
	reg     *registry
	store   state.Store
	codec   codec.Codec
	sink    actor.ReplySink
	metrics actor.ExecutorMetrics
	tasks   actor.TaskRunner

	saveTimeout time.Duration

	activate *sf.Singleflight[actor.Executor]
}

// New builds the system and starts the scheduler workers.
func New(cfg Config) *System {
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Codec == nil {
		cfg.Codec = codec.JSON{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = actor.NopExecutorMetrics()
	}
	if cfg.MaxBackgroundTasks <= 0 {
		cfg.MaxBackgroundTasks = 64
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(cfg.Context)

	schedOpts := cfg.Scheduler
	schedOpts.Context = ctx
	if schedOpts.Log == nil {
		schedOpts.Log = cfg.Log
	}

	return &System{
		ctx:         ctx,
		cancel:      cancel,
		log:         cfg.Log,
		sched:       sched.New(schedOpts),
		reg:         newRegistry(cfg.RegistryShards),
		store:       cfg.Store,
		codec:       cfg.Codec,
		sink:        cfg.Sink,
		metrics:     cfg.Metrics,
		tasks:       actor.NewTaskRunner(ctx, cfg.MaxBackgroundTasks, cfg.Log),
		saveTimeout: cfg.SaveTimeout,
		activate:    sf.New[actor.Executor](),
	}
}

// Scheduler exposes the underlying scheduler, e.g. for queue maintenance
// via CleanAllWorkerQueues.
func (s *System) Scheduler() *sched.Scheduler { return s.sched }

// Len returns the number of registered actors.
func (s *System) Len() int { return s.reg.len() }

type registerOpts struct {
	initial  any
	newState func() any
}

type RegisterOption func(*registerOpts)

// WithInitialState sets the state an actor starts with. The Store is not
// consulted on registration; see WithPersistentState for that.
func WithInitialState(st any) RegisterOption {
	return func(o *registerOpts) { o.initial = st }
}

// WithPersistentState sets the initial state and teaches the system how to
// decode a persisted snapshot of it. Registration then consults the
// configured Store before falling back to initial.
func WithPersistentState[S any](initial S) RegisterOption {
	return func(o *registerOpts) {
		o.initial = initial
		o.newState = func() any { return new(S) }
	}
}

// Register creates (or returns) the executor for id. An empty id gets a
// generated one. Concurrent registrations of the same id are deduplicated;
// the persisted state is loaded exactly once. The new actor starts dormant
// until the first Post.
func (s *System) Register(ctx context.Context, id string, recv actor.Receiver, opts ...RegisterOption) (*actor.Executor, error) {
	select {
	case <-s.ctx.Done():
		return nil, ErrShuttingDown
	default:
	}

	if id == "" {
		id = fmt.Sprintf("actor-%s", gonanoid.Must(6))
	}

	var o registerOpts
	for _, opt := range opts {
		opt(&o)
	}

	return s.activate.Do(id, func() (*actor.Executor, error) {
		if ex, ok := s.reg.get(id); ok {
			return ex, nil
		}

		st := o.initial
		if s.store != nil && o.newState != nil {
			loaded, ok, err := s.loadState(ctx, id, o.newState)
			if err != nil {
				return nil, err
			}
			if ok {
				st = loaded
			}
		}

		var onSuspend func(snapshot any)
		if s.store != nil {
			onSuspend = func(snapshot any) { s.saveState(id, snapshot) }
		}

		ex := actor.NewExecutor(id, recv, st, actor.ExecutorOptions{
			Log:       s.log,
			Metrics:   s.metrics,
			Sink:      s.sink,
			Tasks:     s.tasks,
			OnSuspend: onSuspend,
		})
		s.reg.put(id, ex)
		return ex, nil
	})
}

func (s *System) loadState(ctx context.Context, id string, newState func() any) (any, bool, error) {
	data, err := s.store.Load(ctx, id)
	if errors.Is(err, state.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load state for %s: %w", id, err)
	}

	v := newState()
	if err := s.codec.Unmarshal(data, v); err != nil {
		return nil, false, fmt.Errorf("failed to decode state for %s: %w", id, err)
	}
	// newState returns a pointer; actors hold the value
	return reflect.ValueOf(v).Elem().Interface(), true, nil
}

func (s *System) saveState(id string, snapshot any) {
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()

	data, err := s.codec.Marshal(snapshot)
	if err != nil {
		s.log.Error("failed to encode state", slog.String("actor_id", id), slog.Any("error", err))
		return
	}
	if err := s.store.Save(ctx, id, data); err != nil {
		s.log.Error("failed to save state", slog.String("actor_id", id), slog.Any("error", err))
	}
}

// Post appends msg to the actor's mailbox and schedules the executor if it
// was dormant.
func (s *System) Post(ctx context.Context, id string, msg any) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return ErrShuttingDown
	default:
	}

	ex, ok := s.reg.get(id)
	if !ok || !ex.Alive() {
		return fmt.Errorf("%w: %s", ErrUnknownActor, id)
	}

	ex.Post(msg)
	s.schedule(ex)
	return nil
}

// schedule hands the executor to the scheduler unless it is already queued
// or mid-episode.
func (s *System) schedule(ex *actor.Executor) {
	if ex.IsActive() && ex.HasMessages() && ex.TrySchedule() {
		s.sched.Enqueue(ex)
	}
}

// Pause administratively stops an actor; pending messages stay in the
// mailbox until Resume.
func (s *System) Pause(id string) error {
	ex, ok := s.reg.get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownActor, id)
	}
	ex.Pause()
	return nil
}

// Resume re-activates a paused actor and reschedules it when messages are
// pending.
func (s *System) Resume(id string) error {
	ex, ok := s.reg.get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownActor, id)
	}
	ex.Resume()
	s.schedule(ex)
	return nil
}

// Remove unregisters the actor and purges its queue entries. An in-flight
// episode completes normally but is not re-enqueued. Returns whether the
// actor was registered.
func (s *System) Remove(id string) bool {
	ex, ok := s.reg.get(id)
	if ok {
		ex.Kill()
	}
	s.sched.RemoveActor(id)
	return s.reg.delete(id) || ok
}

// Shutdown stops the scheduler, parks every actor (flushing state when a
// store is configured), and waits for background tasks to finish.
func (s *System) Shutdown(ctx context.Context) error {
	s.sched.Close()

	s.reg.each(func(ex *actor.Executor) {
		ex.SuspendExecution()
	})

	done := make(chan struct{})
	go func() {
		s.tasks.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	case <-done:
	}

	s.cancel()
	return nil
}
