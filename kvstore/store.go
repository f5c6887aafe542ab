// Package kvstore provides the key-value backends a benchmark runs
// against and a Tracked wrapper that reports every access to a
// tracker.Recorder.
package kvstore

import "errors"

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("kvstore: not found")

// Store is the minimal key-value interface shared by all backends.
type Store interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Close() error
}
