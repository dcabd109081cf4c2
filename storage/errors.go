package storage

import (
	"errors"
	"fmt"
)

// ErrCorrupt is matched by load errors caused by an unreadable document, as
// opposed to an unreachable backend.
var ErrCorrupt = errors.New("corrupt state document")

// StorageError represents a failed backend operation.
type StorageError struct {
	Backend string // "file", "bolt", "redis", "sqlite", "memory"
	Op      string // "load", "save", "decode", "encode", "close"
	Path    string // file path, key or address, may be empty
	Err     error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("storage error [%s] %s: %v", e.Backend, e.Op, e.Err)
	}
	return fmt.Sprintf("storage error [%s] %s %s: %v", e.Backend, e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func corrupt(backend, path string, err error) error {
	return &StorageError{Backend: backend, Op: "decode", Path: path, Err: errors.Join(ErrCorrupt, err)}
}

var errInvalidRecord = errors.New("record is not valid JSON")
