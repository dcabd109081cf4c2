// Package debounce coalesces bursts of notifications into a single action that
// runs once the notifications stop for a quiet period.
package debounce

import (
	"sync"
	"time"
)

// DefaultQuiet is the quiet period used for window geometry writes.
const DefaultQuiet = 500 * time.Millisecond

// State of a Debouncer.
type State int

const (
	// Idle means no action is scheduled.
	Idle State = iota
	// Pending means a timer is armed and the action runs when it fires.
	Pending
)

func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

// Debouncer owns a single timer. Notify arms or restarts it, Cancel disarms it
// without running the action.
//
//	Idle    --Notify--> Pending
//	Pending --Notify--> Pending (timer restarted)
//	Pending --fire----> Idle    (action runs)
//	Pending --Cancel--> Idle    (action skipped)
//
// The action runs on the timer goroutine.
type Debouncer struct {
	mu     sync.Mutex
	quiet  time.Duration
	action func()
	timer  *time.Timer
	state  State
	gen    uint64 // bumped on every Notify and Cancel so stale timers do nothing
}

// New creates an idle Debouncer. A quiet period of zero or less selects
// DefaultQuiet.
func New(quiet time.Duration, action func()) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Debouncer{
		quiet:  quiet,
		action: action,
	}
}

// Notify schedules the action after the quiet period, replacing any schedule
// already pending.
func (d *Debouncer) Notify() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.state = Pending
	d.timer = time.AfterFunc(d.quiet, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.state != Pending {
		d.mu.Unlock()
		return
	}
	d.state = Idle
	d.timer = nil
	d.mu.Unlock()
	d.action()
}

// Cancel drops a pending action without running it. It reports whether an
// action was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	was := d.state == Pending
	d.state = Idle
	return was
}

// State returns the current state.
func (d *Debouncer) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Quiet returns the quiet period.
func (d *Debouncer) Quiet() time.Duration {
	return d.quiet
}
