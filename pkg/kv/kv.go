// Package kv is the pluggable key-value persistence port used for derived
// caches and drafts. Implementations are caches, never the source of truth;
// callers must tolerate a missing key and rebuild from upstream.
package kv

import "context"

// Store reads and writes opaque values by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
