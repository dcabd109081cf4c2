package schema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"github.com/xyzj/toolbox/json"
)

// Kind names a record shape known to the validator.
type Kind string

const (
	KindMessage     Kind = "chatMessage"
	KindHistory     Kind = "chatHistory"
	KindWindowState Kind = "windowState"
	KindSettings    Kind = "settings"
)

const messageSchema = `{
	"type": "object",
	"required": ["id", "role", "content", "timestamp"],
	"properties": {
		"id": {"type": "string"},
		"role": {"enum": ["user", "assistant"]},
		"content": {"type": "string"},
		"timestamp": {"type": "number"}
	}
}`

var schemaSources = map[Kind]string{
	KindMessage: messageSchema,
	KindHistory: `{"type": "array", "items": ` + messageSchema + `}`,
	KindWindowState: `{
		"type": "object",
		"required": ["x", "y", "width", "height", "isMaximized"],
		"properties": {
			"x": {"type": "number"},
			"y": {"type": "number"},
			"width": {"type": "number"},
			"height": {"type": "number"},
			"isMaximized": {"type": "boolean"}
		}
	}`,
	KindSettings: `{"type": "object"}`,
}

var compiled = mustCompile()

func mustCompile() map[Kind]*gojsonschema.Schema {
	out := make(map[Kind]*gojsonschema.Schema, len(schemaSources))
	for k, src := range schemaSources {
		s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			panic(fmt.Sprintf("schema %s: %v", k, err))
		}
		out[k] = s
	}
	return out
}

// ValidationError reports a document that does not match its record shape.
type ValidationError struct {
	Kind     Kind
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Kind, strings.Join(e.Problems, "; "))
}

// Validate checks raw against the schema registered for kind.
// It returns nil or a *ValidationError.
func Validate(kind Kind, raw []byte) error {
	s, ok := compiled[kind]
	if !ok {
		return &ValidationError{Kind: kind, Problems: []string{"unknown record kind"}}
	}
	if len(raw) == 0 {
		return &ValidationError{Kind: kind, Problems: []string{"empty document"}}
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		// the loader failed to parse the document at all
		return &ValidationError{Kind: kind, Problems: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		problems = append(problems, re.String())
	}
	return &ValidationError{Kind: kind, Problems: problems}
}

func decode[T any](kind Kind, raw []byte) (T, error) {
	var v T
	if err := Validate(kind, raw); err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, &ValidationError{Kind: kind, Problems: []string{err.Error()}}
	}
	return v, nil
}

// DecodeMessage validates and decodes a single chat message.
func DecodeMessage(raw []byte) (ChatMessage, error) {
	return decode[ChatMessage](KindMessage, raw)
}

// DecodeHistory validates and decodes the whole chatHistory record.
// A single bad entry invalidates the record.
func DecodeHistory(raw []byte) ([]ChatMessage, error) {
	msgs, err := decode[[]ChatMessage](KindHistory, raw)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []ChatMessage{}
	}
	return msgs, nil
}

// DecodeWindowState validates and decodes the windowState record.
func DecodeWindowState(raw []byte) (WindowState, error) {
	return decode[WindowState](KindWindowState, raw)
}

// DecodeSettings validates and decodes the settings record.
func DecodeSettings(raw []byte) (Settings, error) {
	s, err := decode[Settings](KindSettings, raw)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = Settings{}
	}
	return s, nil
}
