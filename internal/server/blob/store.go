// Package blob abstracts the byte store holding attachment payloads. The
// document service treats locations as opaque keys: it writes and reads by
// path, nothing more.
package blob

import "context"

// Store is a minimal byte-addressable blob store.
type Store interface {
	// Put stores data under key, overwriting any previous content.
	Put(ctx context.Context, key string, data []byte) error
	// Get returns the bytes stored under key, or common.ErrorNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
}
