// Package schema describes the records persisted by the application state store
// and validates raw JSON documents against them.
//
// Every record kind has a JSON schema compiled once at package init. Decoders
// return the typed value together with a *ValidationError so that each call site
// decides whether a failure means "use the default" (reading persisted data) or
// "refuse the write" (accepting new data from the renderer).
package schema

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/xyzj/toolbox/json"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type (
	// ChatMessage is one turn of the conversation as it is stored in the
	// chatHistory record. Messages are immutable once saved; they can only
	// be deleted.
	ChatMessage struct {
		ID        string `json:"id"`        // Caller supplied identifier, not enforced unique
		Role      Role   `json:"role"`      // user or assistant
		Content   string `json:"content"`   // Message text
		Timestamp int64  `json:"timestamp"` // Epoch milliseconds
	}

	// WindowState is the last known geometry of the main window.
	WindowState struct {
		X           int  `json:"x"`
		Y           int  `json:"y"`
		Width       int  `json:"width"`
		Height      int  `json:"height"`
		IsMaximized bool `json:"isMaximized"`
	}

	// Settings is an open record. No fields are defined yet, it only has to be
	// a JSON object.
	Settings map[string]any
)

// NewMessage builds a message with a random id and the current time.
func NewMessage(role Role, content string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}
}

// UnmarshalJSON accepts any JSON number as timestamp, dropping a fraction.
func (m *ChatMessage) UnmarshalJSON(b []byte) error {
	var v struct {
		ID        string  `json:"id"`
		Role      Role    `json:"role"`
		Content   string  `json:"content"`
		Timestamp float64 `json:"timestamp"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*m = ChatMessage{ID: v.ID, Role: v.Role, Content: v.Content, Timestamp: int64(v.Timestamp)}
	return nil
}

// UnmarshalJSON accepts any JSON number for the geometry, rounding to whole
// pixels.
func (w *WindowState) UnmarshalJSON(b []byte) error {
	var v struct {
		X           float64 `json:"x"`
		Y           float64 `json:"y"`
		Width       float64 `json:"width"`
		Height      float64 `json:"height"`
		IsMaximized bool    `json:"isMaximized"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*w = WindowState{
		X:           int(math.Round(v.X)),
		Y:           int(math.Round(v.Y)),
		Width:       int(math.Round(v.Width)),
		Height:      int(math.Round(v.Height)),
		IsMaximized: v.IsMaximized,
	}
	return nil
}
