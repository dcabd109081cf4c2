package visionchat

import (
	"context"
	"encoding/json"
	"fmt"

	tbjson "github.com/xyzj/toolbox/json"

	"github.com/xyzj/visionchat/boundary"
	"github.com/xyzj/visionchat/window"
)

// Param describes one argument of a boundary operation.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "string", "number" or "object"
	Description string `json:"description"`
}

// Operation is one entry of the boundary catalog.
type Operation struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params,omitempty"`
}

// Operations is the catalog of operations callable from the renderer.
var Operations = []Operation{
	{Name: "getSettings", Description: "Return the stored settings object, empty when none is stored"},
	{Name: "setSettings", Description: "Replace the stored settings object", Params: []Param{
		{Name: "settings", Type: "object", Description: "settings object"},
	}},
	{Name: "getWindowState", Description: "Return the last persisted window geometry"},
	{Name: "getAiStatus", Description: "Report whether the AI service is configured"},
	{Name: "minimizeWindow", Description: "Minimize the main window"},
	{Name: "maximizeWindow", Description: "Toggle the main window between maximized and restored"},
	{Name: "closeWindow", Description: "Close the main window"},
	{Name: "isWindowMaximized", Description: "Report whether the main window is maximized"},
	{Name: "setWindowBounds", Description: "Move and resize the main window; the geometry is saved after the quiet period", Params: []Param{
		{Name: "x", Type: "number", Description: "left edge in pixels"},
		{Name: "y", Type: "number", Description: "top edge in pixels"},
		{Name: "width", Type: "number", Description: "width in pixels"},
		{Name: "height", Type: "number", Description: "height in pixels"},
	}},
	{Name: "analyzeImage", Description: "Ask the AI service about an image", Params: []Param{
		{Name: "imageData", Type: "string", Description: "base64 encoded image bytes"},
		{Name: "mimeType", Type: "string", Description: "image/jpeg, image/png, image/gif or image/webp"},
		{Name: "prompt", Type: "string", Description: "question about the image"},
	}},
	{Name: "getChatHistory", Description: "Return the stored chat messages in order"},
	{Name: "saveMessage", Description: "Append a chat message to the history", Params: []Param{
		{Name: "message", Type: "object", Description: "chat message with id, role, content and timestamp"},
	}},
	{Name: "clearHistory", Description: "Remove every chat message"},
	{Name: "deleteMessage", Description: "Remove the chat messages with the given id", Params: []Param{
		{Name: "messageId", Type: "string", Description: "id of the message to delete"},
	}},
}

// LookupOperation returns the catalog entry named name.
func LookupOperation(name string) (Operation, bool) {
	for _, op := range Operations {
		if op.Name == name {
			return op, true
		}
	}
	return Operation{}, false
}

type arguments map[string]json.RawMessage

// raw returns the argument body, nil when absent.
func (a arguments) raw(name string) []byte {
	return a[name]
}

// str returns a string argument; anything but a JSON string reads as "".
func (a arguments) str(name string) string {
	var s string
	if err := tbjson.Unmarshal(a[name], &s); err != nil {
		return ""
	}
	return s
}

// Invoke runs the operation op with its arguments given as one JSON object
// and returns the transport envelope. Value operations put their result in
// Data; boolean operations only set Success.
func (a *App) Invoke(ctx context.Context, op string, args []byte) boundary.Envelope {
	var in arguments
	if len(args) > 0 {
		if err := tbjson.Unmarshal(args, &in); err != nil {
			return boundary.Fail(fmt.Errorf("%s: arguments must be a JSON object: %w", op, err))
		}
	}
	switch op {
	case "getSettings":
		return envelope(a.GetSettings())
	case "setSettings":
		return boundary.FromBool(a.SetSettings(in.raw("settings")))
	case "getWindowState":
		return envelope(a.GetWindowState())
	case "getAiStatus":
		return boundary.OK(a.GetAiStatus())
	case "minimizeWindow":
		return envelope(struct{}{}, a.MinimizeWindow())
	case "maximizeWindow":
		return envelope(struct{}{}, a.MaximizeWindow())
	case "closeWindow":
		return envelope(struct{}{}, a.CloseWindow())
	case "isWindowMaximized":
		return envelope(a.IsWindowMaximized())
	case "setWindowBounds":
		var r window.Rect
		if len(args) > 0 {
			// a body that does not decode leaves a zero size, which is rejected
			_ = tbjson.Unmarshal(args, &r)
		}
		return envelope(struct{}{}, a.SetWindowBounds(r))
	case "analyzeImage":
		return envelope(a.AnalyzeImage(ctx, in.str("imageData"), in.str("mimeType"), in.str("prompt")))
	case "getChatHistory":
		return envelope(a.GetChatHistory())
	case "saveMessage":
		return boundary.FromBool(a.SaveMessage(in.raw("message")))
	case "clearHistory":
		return boundary.FromBool(a.ClearHistory())
	case "deleteMessage":
		return boundary.FromBool(a.DeleteMessage(in.str("messageId")))
	}
	return boundary.Fail(fmt.Errorf("unknown operation %q", op))
}

func envelope[T any](v T, err error) boundary.Envelope {
	if err != nil {
		return boundary.Fail(err)
	}
	if _, ok := any(v).(struct{}); ok {
		return boundary.OK(nil)
	}
	return boundary.OK(v)
}
