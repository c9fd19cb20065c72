package system

import (
	"sync"

	"github.com/Creativesource-Sys/synapsys/core/actor"
	"github.com/Creativesource-Sys/synapsys/internal/shard"
)

// registry is a striped map of executors. Striping keeps lock contention
// low with many thousands of actors registering and resolving concurrently.
type registry struct {
	shards []*regShard
}

type regShard struct {
	mu sync.RWMutex
	m  map[string]*actor.Executor
}

func newRegistry(shardCount int) *registry {
	if shardCount <= 0 {
		shardCount = 32
	}
	shards := make([]*regShard, shardCount)
	for i := range shards {
		shards[i] = &regShard{m: make(map[string]*actor.Executor)}
	}
	return &registry{shards: shards}
}

func (r *registry) shardFor(id string) *regShard {
	return r.shards[shard.ForKey(id, len(r.shards))]
}

func (r *registry) get(id string) (*actor.Executor, bool) {
	s := r.shardFor(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	ex, ok := s.m[id]
	return ex, ok
}

func (r *registry) put(id string, ex *actor.Executor) {
	s := r.shardFor(id)
	s.mu.Lock()
	s.m[id] = ex
	s.mu.Unlock()
}

func (r *registry) delete(id string) bool {
	s := r.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[id]
	delete(s.m, id)
	return ok
}

func (r *registry) each(f func(ex *actor.Executor)) {
	for _, s := range r.shards {
		s.mu.RLock()
		for _, ex := range s.m {
			f(ex)
		}
		s.mu.RUnlock()
	}
}

func (r *registry) len() int {
	n := 0
	for _, s := range r.shards {
		s.mu.RLock()
		n += len(s.m)
		s.mu.RUnlock()
	}
	return n
}
