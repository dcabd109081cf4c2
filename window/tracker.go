package window

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/xyzj/visionchat/debounce"
	"github.com/xyzj/visionchat/schema"
)

// SaveFunc persists a window state.
type SaveFunc func(schema.WindowState) error

// Tracker turns window events into window state writes. Move and resize events
// are coalesced through a debouncer; maximize transitions are written at once.
type Tracker struct {
	mu      sync.Mutex
	ctrl    Controller
	save    SaveFunc
	deb     *debounce.Debouncer
	logg    zerolog.Logger
	pending schema.WindowState
	closed  bool
}

// NewTracker creates a tracker for ctrl writing through save after quiet.
func NewTracker(ctrl Controller, quiet time.Duration, save SaveFunc, logg zerolog.Logger) *Tracker {
	t := &Tracker{
		ctrl: ctrl,
		save: save,
		logg: logg,
	}
	t.deb = debounce.New(quiet, t.flush)
	return t
}

// Snapshot reads the current geometry from the controller.
func Snapshot(ctrl Controller) schema.WindowState {
	b := ctrl.Bounds()
	return schema.WindowState{
		X:           b.X,
		Y:           b.Y,
		Width:       b.Width,
		Height:      b.Height,
		IsMaximized: ctrl.IsMaximized(),
	}
}

// GeometryChanged records the geometry at the time of the event and schedules
// a write after the quiet period. Events for a destroyed window are ignored.
func (t *Tracker) GeometryChanged() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.ctrl.IsDestroyed() {
		return
	}
	t.pending = Snapshot(t.ctrl)
	t.deb.Notify()
}

// MaximizeChanged writes the state immediately; it also supersedes any
// pending geometry write.
func (t *Tracker) MaximizeChanged() {
	t.mu.Lock()
	if t.closed || t.ctrl.IsDestroyed() {
		t.mu.Unlock()
		return
	}
	t.deb.Cancel()
	ws := Snapshot(t.ctrl)
	t.mu.Unlock()
	t.write(ws)
}

func (t *Tracker) flush() {
	t.mu.Lock()
	if t.closed || t.ctrl.IsDestroyed() {
		t.mu.Unlock()
		return
	}
	ws := t.pending
	t.mu.Unlock()
	t.write(ws)
}

func (t *Tracker) write(ws schema.WindowState) {
	if err := t.save(ws); err != nil {
		t.logg.Warn().Err(err).Msg("window state write failed")
	}
}

// Pending reports whether a geometry write is scheduled.
func (t *Tracker) Pending() bool {
	return t.deb.State() == debounce.Pending
}

// Close cancels any pending write without performing it; a geometry change in
// the last quiet period is lost. Later events are ignored.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.deb.Cancel()
}
