// Package sf is a typed wrapper around golang.org/x/sync/singleflight.
//
// The system facade uses it to deduplicate concurrent actor activations:
// when many callers register the same actor id at once, the persisted
// state is loaded and the executor constructed exactly once.
package sf

import "golang.org/x/sync/singleflight"

// Singleflight deduplicates concurrent function calls with the same key.
type Singleflight[T any] struct {
	group singleflight.Group
}

// Do executes fn for the given key. If a call is already in flight for the
// key, Do blocks until it completes and returns the same result.
func (s *Singleflight[T]) Do(key string, fn func() (*T, error)) (*T, error) {
	v, err, _ := s.group.Do(key, func() (out any, err error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

// New creates a new Singleflight instance for type T.
func New[T any]() *Singleflight[T] {
	return &Singleflight[T]{}
}
