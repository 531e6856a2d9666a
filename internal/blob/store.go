// Package blob stores the persisted entities as opaque named byte blobs.
// Each backend is a plain key/value store: Load returns what the last Save
// wrote under the same name.
package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when nothing was ever saved under a name.
var ErrNotFound = errors.New("blob not found")

// Store is the interface for loading and saving named blobs.
type Store interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
	Close() error
}
