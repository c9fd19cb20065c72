package nats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Creativesource-Sys/synapsys/core/sched"
	"github.com/Creativesource-Sys/synapsys/core/system"
	"github.com/Creativesource-Sys/synapsys/internal/codec"
	"github.com/Creativesource-Sys/synapsys/ports/state"
)

func newTestStore(t *testing.T) *StateStore {
	connect := NewTestContainer(t)

	store, err := NewStateStore(t.Context(), StateConfig{
		Connect: connect,
		Bucket:  "synapsys_test_state",
	})
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func TestStateStore_roundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	_, err := store.Load(ctx, "a")
	require.ErrorIs(t, err, state.ErrNotFound)

	require.NoError(t, store.Save(ctx, "a", []byte(`{"count":3}`)))

	data, err := store.Load(ctx, "a")
	require.NoError(t, err)
	require.JSONEq(t, `{"count":3}`, string(data))

	require.NoError(t, store.Delete(ctx, "a"))
	// a deleted key reads as not found
	_, err = store.Load(ctx, "a")
	require.ErrorIs(t, err, state.ErrNotFound)
}

type counterState struct {
	Count int `json:"count"`
}

type add struct{ N int }

func TestStateStore_withSystem(t *testing.T) {
	store := newTestStore(t)

	sys := system.New(system.Config{
		Context:   t.Context(),
		Store:     store,
		Scheduler: sched.Options{NumWorkers: 2, MaxReductions: 100},
	})

	recv := system.Receive(func(msg add, st counterState) (counterState, any, error) {
		st.Count += msg.N
		return st, nil, nil
	})

	_, err := sys.Register(t.Context(), "counter-nats", recv, system.WithPersistentState(counterState{}))
	require.NoError(t, err)
	require.NoError(t, sys.Post(t.Context(), "counter-nats", add{N: 5}))

	require.Eventually(t, func() bool {
		out, err := state.Load[counterState](t.Context(), store, codec.JSON{}, "counter-nats")
		return err == nil && out.Count == 5
	}, 10*time.Second, 50*time.Millisecond)

	require.NoError(t, sys.Shutdown(t.Context()))

	// a fresh system picks the snapshot back up
	sys2 := system.New(system.Config{
		Context:   t.Context(),
		Store:     store,
		Scheduler: sched.Options{NumWorkers: 2, MaxReductions: 100},
	})
	defer func() { require.NoError(t, sys2.Shutdown(t.Context())) }()

	ex, err := sys2.Register(t.Context(), "counter-nats", recv, system.WithPersistentState(counterState{}))
	require.NoError(t, err)
	require.Equal(t, counterState{Count: 5}, ex.Snapshot())
}
