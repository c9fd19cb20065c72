package sched

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Creativesource-Sys/synapsys/core/actor"
)

func newIdleExecutor(id string) *actor.Executor {
	recv := actor.ReceiverFunc(func(msg any, st any) (any, any, error) {
		return st, nil, nil
	})
	return actor.NewExecutor(id, recv, nil, actor.ExecutorOptions{})
}

func TestQueue_fifo(t *testing.T) {
	q := newQueue()
	a, b := newIdleExecutor("a"), newIdleExecutor("b")
	q.offer(a)
	q.offer(b)

	require.Equal(t, 2, q.len())
	require.Same(t, a, q.poll())
	require.Same(t, b, q.poll())
	require.Nil(t, q.poll())
}

func TestQueue_pollHits(t *testing.T) {
	q := newQueue()
	require.Nil(t, q.poll())
	require.EqualValues(t, 0, q.pollHits())

	q.offer(newIdleExecutor("a"))
	require.NotNil(t, q.poll())
	require.EqualValues(t, 1, q.pollHits())
}

func TestQueue_removeFunc(t *testing.T) {
	q := newQueue()
	q.offer(newIdleExecutor("a"))
	q.offer(newIdleExecutor("b"))
	q.offer(newIdleExecutor("a"))

	n := q.removeFunc(func(ex *actor.Executor) bool { return ex.ID() == "a" })
	require.Equal(t, 2, n)
	require.Equal(t, 1, q.len())
	require.Equal(t, "b", q.poll().ID())
}

func TestQueue_drain(t *testing.T) {
	q := newQueue()
	q.offer(newIdleExecutor("a"))
	q.offer(newIdleExecutor("b"))

	out := q.drain()
	require.Len(t, out, 2)
	require.Equal(t, 0, q.len())
}
