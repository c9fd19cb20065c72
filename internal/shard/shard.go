// Package shard maps string keys onto a fixed number of shards.
//
// Keys are hashed with blake2b; the 8-byte digest gives a uniform
// distribution even for ids that share long common prefixes
// (e.g. "actor-000001", "actor-000002", ...).
package shard

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

type Func func(key string) int

// ForKey returns the shard index for key in [0, shardCount).
func ForKey(key string, shardCount int) int {
	if shardCount <= 1 {
		return 0
	}
	h, _ := blake2b.New(8, nil)
	h.Write([]byte(key))
	sum := h.Sum(nil)
	return int(binary.BigEndian.Uint64(sum) % uint64(shardCount))
}

type Sharder interface {
	GetShardForKey(key string) int
}

type fnSharder struct {
	fn Func
}

func NewSharder(fn Func) Sharder {
	return &fnSharder{fn: fn}
}

func (s *fnSharder) GetShardForKey(key string) int { return s.fn(key) }

// Distributed shards keys uniformly over count shards.
func Distributed(count int) Sharder {
	return &fnSharder{
		fn: func(key string) int {
			return ForKey(key, count)
		},
	}
}

// Const pins every key to one shard. Useful in tests.
func Const(shard int) Sharder {
	return &fnSharder{
		fn: func(key string) int {
			return shard
		},
	}
}
