package storage

import (
	"errors"
	"sync"
)

// MemoryStorage keeps the document in memory only.
//
// Characteristics:
//   - Data is lost when the process exits
//   - Saves can be made to fail, which tests use to simulate a full disk
type MemoryStorage struct {
	locker  sync.RWMutex
	data    Document
	saves   int
	failErr error
}

// NewMemoryStorage creates an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		data: Document{},
	}
}

// Load returns a copy of the current document.
func (s *MemoryStorage) Load() (Document, error) {
	s.locker.RLock()
	defer s.locker.RUnlock()
	return s.data.Clone(), nil
}

// Save replaces the document unless a failure was injected with FailWith.
func (s *MemoryStorage) Save(doc Document) error {
	s.locker.Lock()
	defer s.locker.Unlock()
	if s.failErr != nil {
		return &StorageError{Backend: "memory", Op: "save", Err: s.failErr}
	}
	s.data = doc.Clone()
	s.saves++
	return nil
}

// Close is a no-op.
func (s *MemoryStorage) Close() error {
	return nil
}

// Saves reports how many successful saves were performed.
func (s *MemoryStorage) Saves() int {
	s.locker.RLock()
	defer s.locker.RUnlock()
	return s.saves
}

// FailWith makes every following Save fail with err. A nil err clears the failure.
func (s *MemoryStorage) FailWith(err error) {
	s.locker.Lock()
	defer s.locker.Unlock()
	s.failErr = err
}

// ErrInjected is a convenience error for FailWith.
var ErrInjected = errors.New("injected save failure")
