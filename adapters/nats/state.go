package nats

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/Creativesource-Sys/synapsys/ports/state"
)

type StateConfig struct {
	Connect Connector
	// Bucket names the KV bucket holding the snapshots.
	Bucket string
	// MaxBytes caps the bucket size. 0 keeps the server default.
	MaxBytes int64
}

// StateStore implements state.Store on a JetStream key/value bucket.
// One key per actor id; the value is whatever bytes the codec produced.
type StateStore struct {
	kv    jetstream.KeyValue
	close closeFunc
}

func NewStateStore(ctx context.Context, cfg StateConfig) (*StateStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required")
	}

	doConnect := cfg.Connect
	if doConnect == nil {
		doConnect = ConnectDefault()
	}

	nc, closeCon, err := doConnect()
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		closeCon()
		return nil, err
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:   cfg.Bucket,
		Storage:  jetstream.FileStorage,
		MaxBytes: cfg.MaxBytes,
	})
	if err != nil {
		closeCon()
		return nil, fmt.Errorf("failed to open bucket %s: %w", cfg.Bucket, err)
	}

	return &StateStore{kv: kv, close: closeCon}, nil
}

func (s *StateStore) Load(ctx context.Context, id string) ([]byte, error) {
	v, err := s.kv.Get(ctx, id)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, state.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load state for %s: %w", id, err)
	}
	return v.Value(), nil
}

func (s *StateStore) Save(ctx context.Context, id string, data []byte) error {
	if _, err := s.kv.Put(ctx, id, data); err != nil {
		return fmt.Errorf("failed to save state for %s: %w", id, err)
	}
	return nil
}

func (s *StateStore) Delete(ctx context.Context, id string) error {
	if err := s.kv.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete state for %s: %w", id, err)
	}
	return nil
}

// Close releases the underlying connection lease.
func (s *StateStore) Close() {
	if s.close != nil {
		s.close()
	}
}

var _ state.Store = (*StateStore)(nil)
