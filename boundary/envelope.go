package boundary

// Envelope is the uniform response shape sent back over a transport.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    Kind   `json:"kind,omitempty"`
}

// OK wraps a successful value.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail wraps an error, carrying its kind when it has one.
func Fail(err error) Envelope {
	env := Envelope{Success: false, Error: err.Error()}
	if k, ok := KindOf(err); ok {
		env.Kind = k
	}
	return env
}

// FromBool wraps the result of a boolean operation.
func FromBool(ok bool) Envelope {
	return Envelope{Success: ok}
}
