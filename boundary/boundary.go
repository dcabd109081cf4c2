// Package boundary wraps operations callable from the renderer so that every
// one of them fails the same way: the failure is logged as a structured record
// and handed back either as a tagged *Error or as false.
package boundary

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

type (
	// Opt contains options for a Wrapper.
	Opt struct {
		logg    zerolog.Logger
		metrics *Metrics
	}
	// Opts is a function type for configuring a Wrapper.
	Opts func(opt *Opt)
)

// WithLogger sets the logger receiving failure records.
func WithLogger(l zerolog.Logger) Opts {
	return func(opt *Opt) {
		opt.logg = l
	}
}

// WithMetrics counts every call on m.
func WithMetrics(m *Metrics) Opts {
	return func(opt *Opt) {
		opt.metrics = m
	}
}

// Wrapper applies the boundary policy.
type Wrapper struct {
	logg    zerolog.Logger
	metrics *Metrics
}

// New creates a Wrapper.
func New(opts ...Opts) *Wrapper {
	opt := &Opt{
		logg: zerolog.Nop(),
	}
	for _, o := range opts {
		o(opt)
	}
	return &Wrapper{
		logg:    opt.logg,
		metrics: opt.metrics,
	}
}

// run calls fn turning a panic into an error.
func run[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func (w *Wrapper) report(op string, err error, args []any) {
	w.logg.Error().
		Str("operation", op).
		Str("error", err.Error()).
		Interface("args", args).
		Msg("boundary operation failed")
}

// Value runs fn as operation op. A successful result is returned unchanged.
// A failure is logged with op and args and returned as an *Error of the given
// kind; an error that already carries a kind keeps it.
//
// args are the operation arguments as received from the caller, excluding
// any caller context.
func Value[T any](w *Wrapper, op string, kind Kind, fn func() (T, error), args ...any) (T, error) {
	v, err := run(fn)
	w.metrics.observe(op, err == nil)
	if err == nil {
		return v, nil
	}
	w.report(op, err, args)
	var zero T
	var be *Error
	if errors.As(err, &be) {
		if be.Op == "" {
			be.Op = op
		}
		return zero, be
	}
	return zero, &Error{Kind: kind, Op: op, Err: err}
}

// Bool runs fn as operation op and reports success. A failure is logged the
// same way as Value and turned into false.
func (w *Wrapper) Bool(op string, fn func() error, args ...any) bool {
	_, err := run(func() (struct{}, error) { return struct{}{}, fn() })
	w.metrics.observe(op, err == nil)
	if err != nil {
		w.report(op, err, args)
		return false
	}
	return true
}
