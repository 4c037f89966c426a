// Package storage provides the durable key-value persistence abstraction the
// memory stores are built on. Three interchangeable backends exist: a MySQL
// table (gorm), a local JSON file, and a remote HTTP key-value service.
package storage

import (
	"context"
	"encoding/json"
)

// Store is the persistence contract shared by every backend. Values are raw
// JSON documents; schema belongs to the caller.
//
// Get returns (nil, nil) for a missing key - absence is not an error. Errors
// returned here are backend failures (connection, serialization); callers on
// the reply path are expected to log them and degrade to defaults rather than
// propagate.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
	Delete(ctx context.Context, key string) error
}
