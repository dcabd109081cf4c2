// Package window holds everything the state store needs to know about the
// main window: the handle interface, display bounds clamping and the tracker
// that turns geometry events into debounced writes.
package window

import (
	"github.com/xyzj/visionchat/schema"
)

// Rect is a screen rectangle in pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) intersects(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Display describes the primary display.
type Display struct {
	WorkArea Rect `json:"workArea"`
}

// Limits bound the persisted window size.
type Limits struct {
	MinWidth      int
	MinHeight     int
	MaxFactor     int // maximum size as a multiple of the work area
	DefaultWidth  int
	DefaultHeight int
}

// DefaultLimits are the limits used by the desktop client.
func DefaultLimits() Limits {
	return Limits{
		MinWidth:      800,
		MinHeight:     600,
		MaxFactor:     2,
		DefaultWidth:  1200,
		DefaultHeight: 800,
	}
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Default returns the centred default geometry for display.
func Default(display Display, limits Limits) schema.WindowState {
	wa := display.WorkArea
	w := clampInt(limits.DefaultWidth, limits.MinWidth, max(wa.Width, limits.MinWidth))
	h := clampInt(limits.DefaultHeight, limits.MinHeight, max(wa.Height, limits.MinHeight))
	return schema.WindowState{
		X:      wa.X + (wa.Width-w)/2,
		Y:      wa.Y + (wa.Height-h)/2,
		Width:  w,
		Height: h,
	}
}

// Clamp fits ws to display. The size is clamped to
// [minimum, MaxFactor × work area]; a window that does not overlap the work
// area at all is replaced by the centred default, keeping IsMaximized.
// Clamp is a pure function and is applied on every load.
func Clamp(ws schema.WindowState, display Display, limits Limits) schema.WindowState {
	wa := display.WorkArea
	out := ws
	out.Width = clampInt(ws.Width, limits.MinWidth, wa.Width*limits.MaxFactor)
	out.Height = clampInt(ws.Height, limits.MinHeight, wa.Height*limits.MaxFactor)

	r := Rect{X: out.X, Y: out.Y, Width: out.Width, Height: out.Height}
	if !r.intersects(wa) {
		def := Default(display, limits)
		def.IsMaximized = ws.IsMaximized
		return def
	}
	return out
}
