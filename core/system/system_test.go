package system

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Creativesource-Sys/synapsys/core/actor"
	"github.com/Creativesource-Sys/synapsys/core/sched"
	"github.com/Creativesource-Sys/synapsys/internal/codec"
	"github.com/Creativesource-Sys/synapsys/ports/state"
)

type counterState struct {
	Count int `json:"count"`
}

type add struct{ N int }

func addReceiver() actor.Receiver {
	return Receive(func(msg add, st counterState) (counterState, any, error) {
		st.Count += msg.N
		return st, st.Count, nil
	})
}

func newTestSystem(t *testing.T, cfg Config) *System {
	if cfg.Context == nil {
		cfg.Context = t.Context()
	}
	if cfg.Scheduler.NumWorkers == 0 {
		cfg.Scheduler = sched.Options{NumWorkers: 2, MaxReductions: 100}
	}
	s := New(cfg)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func TestSystem_registerAndPost(t *testing.T) {
	var mu sync.Mutex
	var replies []any
	s := newTestSystem(t, Config{
		Sink: func(actorID string, msg any, reply any) {
			mu.Lock()
			replies = append(replies, reply)
			mu.Unlock()
		},
	})

	ex, err := s.Register(t.Context(), "counter-1", addReceiver(), WithInitialState(counterState{}))
	require.NoError(t, err)
	require.Equal(t, "counter-1", ex.ID())
	require.Equal(t, 1, s.Len())

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Post(t.Context(), "counter-1", add{N: 1}))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(replies) == 5
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []any{1, 2, 3, 4, 5}, replies)
	require.Equal(t, counterState{Count: 5}, ex.Snapshot())
}

func TestSystem_generatedID(t *testing.T) {
	s := newTestSystem(t, Config{})
	ex, err := s.Register(t.Context(), "", addReceiver())
	require.NoError(t, err)
	require.NotEmpty(t, ex.ID())
	require.Contains(t, ex.ID(), "actor-")
}

func TestSystem_postUnknownActor(t *testing.T) {
	s := newTestSystem(t, Config{})
	err := s.Post(t.Context(), "nope", add{N: 1})
	require.ErrorIs(t, err, ErrUnknownActor)
}

func TestSystem_registerIdempotent(t *testing.T) {
	s := newTestSystem(t, Config{})

	a, err := s.Register(t.Context(), "x", addReceiver())
	require.NoError(t, err)
	b, err := s.Register(t.Context(), "x", addReceiver())
	require.NoError(t, err)
	require.Same(t, a, b)
	require.Equal(t, 1, s.Len())
}

func TestSystem_concurrentActivation(t *testing.T) {
	store := &countingStore{Store: state.NewMemStore()}
	require.NoError(t, state.Save(t.Context(), store.Store, codec.JSON{}, "x", counterState{Count: 9}))
	store.loads.Store(0)

	s := newTestSystem(t, Config{Store: store})

	var wg sync.WaitGroup
	exs := make([]*actor.Executor, 16)
	for i := range exs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ex, err := s.Register(t.Context(), "x", addReceiver(), WithPersistentState(counterState{}))
			require.NoError(t, err)
			exs[i] = ex
		}(i)
	}
	wg.Wait()

	for _, ex := range exs {
		require.Same(t, exs[0], ex)
	}
	require.Equal(t, int64(1), store.loads.Load(), "state must be loaded once")
	require.Equal(t, counterState{Count: 9}, exs[0].Snapshot())
}

type countingStore struct {
	state.Store
	loads atomic.Int64
}

func (c *countingStore) Load(ctx context.Context, id string) ([]byte, error) {
	c.loads.Add(1)
	return c.Store.Load(ctx, id)
}

func TestSystem_persistence(t *testing.T) {
	store := state.NewMemStore()
	s := newTestSystem(t, Config{Store: store})

	_, err := s.Register(t.Context(), "c", addReceiver(), WithPersistentState(counterState{}))
	require.NoError(t, err)

	require.NoError(t, s.Post(t.Context(), "c", add{N: 7}))

	// the flush runs when the executor parks after draining
	require.Eventually(t, func() bool {
		out, err := state.Load[counterState](t.Context(), store, codec.JSON{}, "c")
		return err == nil && out.Count == 7
	}, time.Second, 5*time.Millisecond)
}

func TestSystem_loadOnRegister(t *testing.T) {
	store := state.NewMemStore()
	require.NoError(t, state.Save(t.Context(), store, codec.JSON{}, "c", counterState{Count: 40}))

	s := newTestSystem(t, Config{Store: store})
	ex, err := s.Register(t.Context(), "c", addReceiver(), WithPersistentState(counterState{}))
	require.NoError(t, err)
	require.Equal(t, counterState{Count: 40}, ex.Snapshot())

	require.NoError(t, s.Post(t.Context(), "c", add{N: 2}))
	require.Eventually(t, func() bool {
		return ex.Snapshot() == counterState{Count: 42}
	}, time.Second, time.Millisecond)
}

func TestSystem_remove(t *testing.T) {
	tr := make(chan any, 16)
	s := newTestSystem(t, Config{})

	recv := actor.ReceiverFunc(func(msg any, st any) (any, any, error) {
		tr <- msg
		return st, nil, nil
	})
	_, err := s.Register(t.Context(), "x", recv)
	require.NoError(t, err)

	require.True(t, s.Remove("x"))
	require.False(t, s.Remove("x"))
	require.Equal(t, 0, s.Len())

	require.ErrorIs(t, s.Post(t.Context(), "x", "hi"), ErrUnknownActor)
	require.Empty(t, tr)
}

func TestSystem_pauseResume(t *testing.T) {
	var processed atomic.Int32
	s := newTestSystem(t, Config{})

	recv := actor.ReceiverFunc(func(msg any, st any) (any, any, error) {
		processed.Add(1)
		return st, nil, nil
	})
	_, err := s.Register(t.Context(), "x", recv)
	require.NoError(t, err)

	require.NoError(t, s.Pause("x"))
	require.NoError(t, s.Post(t.Context(), "x", 1))
	require.NoError(t, s.Post(t.Context(), "x", 2))

	time.Sleep(50 * time.Millisecond)
	require.Zero(t, processed.Load())

	require.NoError(t, s.Resume("x"))
	require.Eventually(t, func() bool { return processed.Load() == 2 }, time.Second, time.Millisecond)
}

func TestSystem_shutdownRejects(t *testing.T) {
	s := New(Config{Context: t.Context(), Scheduler: sched.Options{NumWorkers: 1}})
	require.NoError(t, s.Shutdown(t.Context()))

	_, err := s.Register(t.Context(), "x", addReceiver())
	require.ErrorIs(t, err, ErrShuttingDown)
	require.ErrorIs(t, s.Post(t.Context(), "x", 1), ErrShuttingDown)
}

func TestSystem_shutdownFlushes(t *testing.T) {
	store := state.NewMemStore()
	s := New(Config{Context: t.Context(), Store: store, Scheduler: sched.Options{NumWorkers: 1}})

	_, err := s.Register(t.Context(), "c", addReceiver(), WithPersistentState(counterState{Count: 3}))
	require.NoError(t, err)

	require.NoError(t, s.Shutdown(t.Context()))

	out, err := state.Load[counterState](context.Background(), store, codec.JSON{}, "c")
	require.NoError(t, err)
	require.Equal(t, 3, out.Count)
}
