package window

import (
	"errors"
	"sync"
)

// ErrDestroyed is returned by controllers asked to act on a closed window.
var ErrDestroyed = errors.New("window destroyed")

// Controller is the native window handle as seen by the state store.
// The renderer process owns the real window; implementations forward to it.
type Controller interface {
	Bounds() Rect
	IsMaximized() bool
	IsDestroyed() bool
	Minimize() error
	Maximize() error
	Unmaximize() error
	Close() error
}

// Headless is an in-process Controller. It backs the window operations when
// no native window is attached (the boundary server, tests) and records the
// calls it receives.
type Headless struct {
	mu        sync.Mutex
	bounds    Rect
	maximized bool
	minimized bool
	destroyed bool
	onClose   func()
}

// NewHeadless creates a window with the given bounds.
func NewHeadless(bounds Rect) *Headless {
	return &Headless{bounds: bounds}
}

// OnClose registers f to run once when the window is closed.
func (h *Headless) OnClose(f func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onClose = f
}

func (h *Headless) Bounds() Rect {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bounds
}

// SetBounds simulates a user move or resize.
func (h *Headless) SetBounds(r Rect) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bounds = r
}

func (h *Headless) IsMaximized() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maximized
}

// IsMinimized reports whether Minimize was the last state change.
func (h *Headless) IsMinimized() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.minimized
}

func (h *Headless) IsDestroyed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.destroyed
}

func (h *Headless) Minimize() error {
	return h.change(func() { h.minimized = true })
}

func (h *Headless) Maximize() error {
	return h.change(func() { h.maximized, h.minimized = true, false })
}

func (h *Headless) Unmaximize() error {
	return h.change(func() { h.maximized = false })
}

func (h *Headless) change(f func()) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.destroyed {
		return ErrDestroyed
	}
	f()
	return nil
}

// Close destroys the window. Closing twice is a no-op.
func (h *Headless) Close() error {
	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		return nil
	}
	h.destroyed = true
	f := h.onClose
	h.mu.Unlock()
	if f != nil {
		f()
	}
	return nil
}

var _ Controller = (*Headless)(nil)
