// Package state defines the persistence port consumed by the actor system.
//
// The runtime is blind to the encoding: it hands the store opaque bytes
// produced by a codec. Implementations live in-process (MemStore) or out of
// process (adapters/nats).
package state

import (
	"context"
	"errors"

	"github.com/Creativesource-Sys/synapsys/internal/codec"
)

var (
	ErrNotFound = errors.New("state not found")
)

// Store persists actor state snapshots by actor id.
type Store interface {
	Load(ctx context.Context, id string) ([]byte, error)
	Save(ctx context.Context, id string, data []byte) error
	Delete(ctx context.Context, id string) error
}

// Save encodes v with c and stores it under id.
func Save[T any](ctx context.Context, store Store, c codec.Codec, id string, v T) error {
	data, err := c.Marshal(v)
	if err != nil {
		return err
	}
	return store.Save(ctx, id, data)
}

// Load fetches the snapshot for id and decodes it with c.
func Load[T any](ctx context.Context, store Store, c codec.Codec, id string) (out T, err error) {
	data, err := store.Load(ctx, id)
	if err != nil {
		return
	}
	err = c.Unmarshal(data, &out)
	return
}
