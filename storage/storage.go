package storage

import (
	"context"
	"errors"
)

/*
Storage providers hold the raw plan messages submitted to mohair, keyed by
object ID. The catalog records which objects exist; the provider only moves
bytes.
*/

////////////////////////////////////////////////////////////////////////////////

// ErrObjectNotFound is returned when an object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Provider is the interface for an object storage provider.
type Provider interface {
	// Put stores data under id, replacing any existing object.
	Put(ctx context.Context, id string, data []byte) error
	// Get returns the full contents of the object id.
	Get(ctx context.Context, id string) ([]byte, error)
	// Delete removes the object id. Deleting a missing object is not an
	// error.
	Delete(ctx context.Context, id string) error
	String() string
}
