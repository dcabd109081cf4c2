package visionchat

import (
	"errors"

	"github.com/xyzj/visionchat/boundary"
	"github.com/xyzj/visionchat/schema"
	"github.com/xyzj/visionchat/storage"
	"github.com/xyzj/visionchat/window"
)

// AttachWindow hands the main window to the App. Geometry and maximize events
// of ctrl must then be forwarded to GeometryChanged and MaximizeChanged.
// A previously attached window stops being tracked.
func (a *App) AttachWindow(ctrl window.Controller) {
	a.mu.Lock()
	old := a.tracker
	a.win = ctrl
	a.tracker = window.NewTracker(ctrl, a.cnf.debounce, a.saveWindowState, a.cnf.logg)
	a.mu.Unlock()
	if old != nil {
		old.Close()
	}
}

// GeometryChanged is the move/resize event hook.
func (a *App) GeometryChanged() {
	if tr := a.currentTracker(); tr != nil {
		tr.GeometryChanged()
	}
}

// MaximizeChanged is the maximize/unmaximize event hook.
func (a *App) MaximizeChanged() {
	if tr := a.currentTracker(); tr != nil {
		tr.MaximizeChanged()
	}
}

func (a *App) currentTracker() *window.Tracker {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tracker
}

// liveWindow returns the attached window, or nil when there is none or it has
// been destroyed.
func (a *App) liveWindow() window.Controller {
	a.mu.Lock()
	w := a.win
	a.mu.Unlock()
	if w == nil || w.IsDestroyed() {
		return nil
	}
	return w
}

// fit holds ws inside the limits: clamped to the display when one is known,
// otherwise only raised to the minimum size.
func (a *App) fit(ws schema.WindowState) schema.WindowState {
	if a.cnf.display != nil {
		return window.Clamp(ws, *a.cnf.display, a.cnf.limits)
	}
	ws.Width = max(ws.Width, a.cnf.limits.MinWidth)
	ws.Height = max(ws.Height, a.cnf.limits.MinHeight)
	return ws
}

// saveWindowState persists ws with its size held inside the limits.
func (a *App) saveWindowState(ws schema.WindowState) error {
	ws = a.fit(ws)
	return a.withStore(func() error {
		return a.store.Put(storage.KeyWindowState, ws)
	})
}

// GetWindowState returns the last persisted window state, or nil when none
// was ever saved. The state is fitted to the limits on every load.
func (a *App) GetWindowState() (*schema.WindowState, error) {
	return boundary.Value(a.wrap, "getWindowState", boundary.KindStorage, func() (*schema.WindowState, error) {
		var ws *schema.WindowState
		err := a.withStore(func() error {
			ws = storage.Get(a.store, storage.KeyWindowState, (*schema.WindowState)(nil), func(raw []byte) (*schema.WindowState, error) {
				v, err := schema.DecodeWindowState(raw)
				if err != nil {
					return nil, err
				}
				return &v, nil
			})
			return nil
		})
		if ws != nil {
			c := a.fit(*ws)
			ws = &c
		}
		return ws, err
	})
}

// MinimizeWindow minimizes the main window. Without a live window it does
// nothing.
func (a *App) MinimizeWindow() error {
	_, err := boundary.Value(a.wrap, "minimizeWindow", boundary.KindWindowControl, func() (struct{}, error) {
		w := a.liveWindow()
		if w == nil {
			return struct{}{}, nil
		}
		return struct{}{}, w.Minimize()
	})
	return err
}

// MaximizeWindow toggles the main window between maximized and restored and
// persists the new state at once.
func (a *App) MaximizeWindow() error {
	_, err := boundary.Value(a.wrap, "maximizeWindow", boundary.KindWindowControl, func() (struct{}, error) {
		w := a.liveWindow()
		if w == nil {
			return struct{}{}, nil
		}
		var err error
		if w.IsMaximized() {
			err = w.Unmaximize()
		} else {
			err = w.Maximize()
		}
		if err != nil {
			return struct{}{}, err
		}
		a.MaximizeChanged()
		return struct{}{}, nil
	})
	return err
}

// CloseWindow closes the main window. A pending geometry write is dropped
// before the window goes away.
func (a *App) CloseWindow() error {
	_, err := boundary.Value(a.wrap, "closeWindow", boundary.KindWindowControl, func() (struct{}, error) {
		w := a.liveWindow()
		if w == nil {
			return struct{}{}, nil
		}
		if tr := a.currentTracker(); tr != nil {
			tr.Close()
		}
		return struct{}{}, w.Close()
	})
	return err
}

// IsWindowMaximized reports the maximize state; false without a live window.
func (a *App) IsWindowMaximized() (bool, error) {
	return boundary.Value(a.wrap, "isWindowMaximized", boundary.KindWindowControl, func() (bool, error) {
		w := a.liveWindow()
		if w == nil {
			return false, nil
		}
		return w.IsMaximized(), nil
	})
}

// boundsSetter is implemented by controllers that can be moved from code,
// such as window.Headless.
type boundsSetter interface {
	SetBounds(window.Rect)
}

// SetWindowBounds moves and resizes the main window the way a user drag
// would: the new geometry goes through the debounced write. Without a live
// window it does nothing.
func (a *App) SetWindowBounds(r window.Rect) error {
	_, err := boundary.Value(a.wrap, "setWindowBounds", boundary.KindWindowControl, func() (struct{}, error) {
		if r.Width <= 0 || r.Height <= 0 {
			return struct{}{}, errors.New("window width and height must be positive")
		}
		w := a.liveWindow()
		if w == nil {
			return struct{}{}, nil
		}
		bs, ok := w.(boundsSetter)
		if !ok {
			return struct{}{}, errors.New("window cannot be moved from code")
		}
		bs.SetBounds(r)
		a.GeometryChanged()
		return struct{}{}, nil
	}, r)
	return err
}
