package state

import (
	"container/list"
	"context"
	"sync"
)

type cacheEntry struct {
	id   string
	data []byte
}

// cachedStore is an LRU read-through wrapper around a Store. Loads hit the
// cache first; saves write through and refresh the cached copy. Useful in
// front of a remote store when actors passivate and reactivate frequently.
type cachedStore struct {
	next Store
	size int

	mu  sync.Mutex
	ll  *list.List
	idx map[string]*list.Element
}

// Cached wraps store with an LRU cache of up to size snapshots.
func Cached(store Store, size int) Store {
	if size <= 0 {
		size = 128
	}
	return &cachedStore{
		next: store,
		size: size,
		ll:   list.New(),
		idx:  make(map[string]*list.Element),
	}
}

func (c *cachedStore) Load(ctx context.Context, id string) ([]byte, error) {
	c.mu.Lock()
	if ele, ok := c.idx[id]; ok {
		c.ll.MoveToFront(ele)
		data := ele.Value.(*cacheEntry).data
		c.mu.Unlock()
		return data, nil
	}
	c.mu.Unlock()

	data, err := c.next.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	c.put(id, data)
	return data, nil
}

func (c *cachedStore) Save(ctx context.Context, id string, data []byte) error {
	if err := c.next.Save(ctx, id, data); err != nil {
		return err
	}
	c.put(id, data)
	return nil
}

func (c *cachedStore) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	if ele, ok := c.idx[id]; ok {
		c.ll.Remove(ele)
		delete(c.idx, id)
	}
	c.mu.Unlock()
	return c.next.Delete(ctx, id)
}

func (c *cachedStore) put(id string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, ok := c.idx[id]; ok {
		c.ll.MoveToFront(ele)
		ele.Value.(*cacheEntry).data = data
		return
	}

	ele := c.ll.PushFront(&cacheEntry{id: id, data: data})
	c.idx[id] = ele
	if c.ll.Len() > c.size {
		last := c.ll.Back()
		if last != nil {
			c.ll.Remove(last)
			delete(c.idx, last.Value.(*cacheEntry).id)
		}
	}
}

var _ Store = (*cachedStore)(nil)
