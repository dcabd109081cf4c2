// Package storage provides the persistent key-value store that backs the
// application state, together with the backends able to hold its document.
//
// The store keeps exactly one logical document made of a few top-level records
// (chat history, window state, settings). Backends only know how to load and save
// that document as a whole; the Store adds lazy loading, defaults and logging on
// top of them.
package storage

import (
	"encoding/json"
	"maps"
)

// Key names a top-level record of the state document.
type Key string

const (
	KeyChatHistory Key = "chatHistory"
	KeyWindowState Key = "windowState"
	KeySettings    Key = "settings"
)

// Document is the whole persisted state: record name to raw JSON body.
type Document map[string]json.RawMessage

// Clone returns a shallow copy; record bodies are never mutated in place.
func (d Document) Clone() Document {
	if d == nil {
		return Document{}
	}
	return maps.Clone(d)
}

// Storage defines a backend able to persist the state document.
//
// Implementations are not required to be safe for concurrent use. The Store
// calls them from a single goroutine at a time.
type Storage interface {
	// Load reads the complete document. A backend that holds no data yet
	// returns an empty document and no error. A document that exists but
	// cannot be decoded is reported with an error matching ErrCorrupt.
	Load() (Document, error)

	// Save replaces the persisted document with doc. A failed Save must
	// leave the previous document readable.
	Save(doc Document) error

	// Close releases the backend resources.
	Close() error
}
