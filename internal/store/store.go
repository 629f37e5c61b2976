// Package store defines the persistent key-value store behind settings,
// the active transfer session and the product mappings.
package store

import (
	"context"
	"errors"
)

// Namespace groups related keys.
type Namespace string

const (
	// Settings holds the user-editable settings blob.
	Settings Namespace = "settings"

	// Session holds the active transfer session.
	Session Namespace = "session"

	// Mappings holds task name to product associations.
	Mappings Namespace = "mappings"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("key not found")

// Store is a namespaced key-value store. Every Put replaces the whole value
// of one key atomically.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, ns Namespace, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, ns Namespace, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, ns Namespace, key string) error

	// List returns every key and value of a namespace.
	List(ctx context.Context, ns Namespace) (map[string][]byte, error)

	// Clear removes every key of a namespace.
	Clear(ctx context.Context, ns Namespace) error

	// Close releases the underlying resources.
	Close() error
}
