// Package store provides the key-value persistence backends the engine
// snapshots into. The engine treats the backend as opaque: a single
// logical key maps to an encoded snapshot blob.
package store

import "context"

// Store is the persistence backend contract. Get returns (nil, nil) when
// the key has never been written, which the engine treats as a fresh
// start rather than an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Close() error
}
