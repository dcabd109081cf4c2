package boundary

import (
	"errors"
	"fmt"
)

// Kind tags the failure domain of a boundary error so callers can branch on it
// without parsing messages.
type Kind string

const (
	KindAPIKeyMissing Kind = "API_KEY_MISSING"
	KindImageAnalysis Kind = "IMAGE_ANALYSIS"
	KindWindowControl Kind = "WINDOW_CONTROL"
	KindStorage       Kind = "STORAGE"
)

// Error is the error returned across the boundary. Its message is the message
// of the wrapped error, unchanged.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds a tagged error from a format string.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return "", false
}
