// Package history manages the persisted chat history as a bounded, append-only
// log. When the log grows past its capacity the oldest messages are dropped
// first, so the most recent context always survives.
package history

import (
	"github.com/xyzj/toolbox/json"

	"github.com/xyzj/visionchat/schema"
	"github.com/xyzj/visionchat/storage"
)

// DefaultCapacity is the maximum number of messages kept when no capacity is given.
const DefaultCapacity = 1000

// New creates a Log over the chatHistory record of store.
// A capacity below 1 selects DefaultCapacity.
//
// Parameters:
//   - store: The persistent store holding the chatHistory record
//   - capacity: Maximum number of messages to keep
//
// Returns a new Log ready for use.
func New(store *storage.Store, capacity int) *Log {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Log{
		store:    store,
		capacity: capacity,
	}
}

// Log is the bounded chat history.
//
// Every mutation reads and validates the stored record first and writes the
// whole sequence back, so the persisted record is always the authority. Reads
// are lenient (a corrupt record reads as empty); writes are strict (an invalid
// message is never stored). Log has no locking of its own.
type Log struct {
	store    *storage.Store
	capacity int
}

// Capacity returns the maximum number of messages kept.
func (u *Log) Capacity() int {
	return u.capacity
}

// List returns the stored messages in insertion order. An absent or invalid
// record yields an empty, non-nil slice.
func (u *Log) List() []schema.ChatMessage {
	return storage.Get(u.store, storage.KeyChatHistory, []schema.ChatMessage{}, schema.DecodeHistory)
}

// Len returns the number of stored messages.
func (u *Log) Len() int {
	return len(u.List())
}

// Last returns the most recent message, used to retry the last turn.
func (u *Log) Last() (schema.ChatMessage, bool) {
	msgs := u.List()
	if len(msgs) == 0 {
		return schema.ChatMessage{}, false
	}
	return msgs[len(msgs)-1], true
}

// Append validates raw as a chat message and appends it, evicting from the
// front when the capacity is exceeded.
//
// Returns:
//   - *schema.ValidationError when raw is not a valid message; nothing is written
//   - the storage error when the write fails
func (u *Log) Append(raw []byte) error {
	msg, err := schema.DecodeMessage(raw)
	if err != nil {
		return err
	}
	msgs := append(u.List(), msg)
	return u.store.Put(storage.KeyChatHistory, u.trim(msgs))
}

// AppendMessage appends a typed message; it goes through the same validation
// as Append so an unknown role is still refused.
func (u *Log) AppendMessage(msg schema.ChatMessage) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return u.Append(b)
}

// trim drops max(0, len-capacity) messages from the front.
func (u *Log) trim(msgs []schema.ChatMessage) []schema.ChatMessage {
	over := len(msgs) - u.capacity
	if over <= 0 {
		return msgs
	}
	out := make([]schema.ChatMessage, u.capacity)
	copy(out, msgs[over:])
	return out
}

// Delete removes every message whose id equals id. Deleting an id that is not
// stored succeeds without writing.
func (u *Log) Delete(id string) error {
	msgs := u.List()
	kept := make([]schema.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(msgs) {
		return nil
	}
	return u.store.Put(storage.KeyChatHistory, kept)
}

// Clear persists an empty history.
func (u *Log) Clear() error {
	return u.store.Put(storage.KeyChatHistory, []schema.ChatMessage{})
}
