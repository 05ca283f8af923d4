// Package storage is the key-value medium shared by sibling tabs: a string
// store with change notifications for writes made by other tabs.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get for a missing key.
	ErrNotFound = errors.New("storage: key not found")

	// ErrCorrupt marks a stored value that is not valid JSON for its key.
	ErrCorrupt = errors.New("storage: corrupt value")

	// ErrQuotaExceeded is returned when the medium refuses a write for lack of space.
	ErrQuotaExceeded = errors.New("storage: quota exceeded")

	// ErrStorageUnavailable is returned when the medium cannot be reached.
	ErrStorageUnavailable = errors.New("storage: unavailable")
)

// Change describes a write observed on the shared medium. NewValue is nil
// when the key was removed.
type Change struct {
	Key      string  `json:"key"`
	NewValue *string `json:"new_value"`
	Origin   string  `json:"origin"`
}

// Store is a string key-value medium shared by several tabs. Each Store value
// acts for exactly one tab, identified by Origin.
type Store interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set writes value and notifies the other tabs.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key and notifies the other tabs. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Subscribe delivers changes made by other tabs until ctx is done, then
	// closes the channel. Changes made through this Store are not delivered.
	Subscribe(ctx context.Context) (<-chan Change, error)

	// Origin identifies the tab this Store writes for.
	Origin() string
}
