// Package visionchat is the application state core of the desktop vision chat
// client. An App owns the persisted store, the chat history, the window tracker
// and the AI analyzer, and exposes them as boundary operations.
package visionchat

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/xyzj/visionchat/chat"
	"github.com/xyzj/visionchat/debounce"
	"github.com/xyzj/visionchat/history"
	"github.com/xyzj/visionchat/storage"
	"github.com/xyzj/visionchat/window"
)

type (
	// Opt contains configuration options for an App.
	Opt struct {
		dataStorage    storage.Storage       // Backend holding the state document
		logg           zerolog.Logger        // Logger for store and boundary failures
		analyzer       chat.Analyzer         // AI service
		window         window.Controller     // Main window handle, may be nil
		display        *window.Display       // Primary display, nil when unknown
		limits         window.Limits         // Window size limits
		registerer     prometheus.Registerer // Registry for boundary metrics, nil disables them
		debounce       time.Duration         // Quiet period of window geometry writes
		maxHistory     int                   // Maximum number of stored chat messages
		analyzeTimeout time.Duration         // Upper bound of one analyzeImage call
	}
	// Opts is a function type for configuring an App.
	Opts func(opt *Opt)
)

// WithStorage sets the storage backend for the state document.
func WithStorage(s storage.Storage) Opts {
	return func(opt *Opt) {
		opt.dataStorage = s
	}
}

// WithLogger sets the logger used by the store and the boundary wrapper.
func WithLogger(l zerolog.Logger) Opts {
	return func(opt *Opt) {
		opt.logg = l
	}
}

// WithAnalyzer sets the AI service used by AnalyzeImage.
func WithAnalyzer(a chat.Analyzer) Opts {
	return func(opt *Opt) {
		opt.analyzer = a
	}
}

// WithWindow attaches the main window handle.
func WithWindow(c window.Controller) Opts {
	return func(opt *Opt) {
		opt.window = c
	}
}

// WithDisplay sets the primary display used to clamp the loaded window state.
func WithDisplay(d window.Display) Opts {
	return func(opt *Opt) {
		opt.display = &d
	}
}

// WithLimits overrides the window size limits.
func WithLimits(l window.Limits) Opts {
	return func(opt *Opt) {
		opt.limits = l
	}
}

// WithMetrics registers the boundary counters on reg.
func WithMetrics(reg prometheus.Registerer) Opts {
	return func(opt *Opt) {
		opt.registerer = reg
	}
}

// WithDebounce sets the quiet period of window geometry writes.
func WithDebounce(d time.Duration) Opts {
	return func(opt *Opt) {
		opt.debounce = d
	}
}

// WithMaxHistory sets the maximum number of messages kept in the chat history.
// When the limit is exceeded the oldest messages are dropped.
func WithMaxHistory(n int) Opts {
	return func(opt *Opt) {
		opt.maxHistory = n
	}
}

// WithAnalyzeTimeout bounds one AnalyzeImage call.
func WithAnalyzeTimeout(t time.Duration) Opts {
	return func(opt *Opt) {
		opt.analyzeTimeout = t
	}
}

func defaultOpt() *Opt {
	return &Opt{
		dataStorage:    storage.NewMemoryStorage(),
		logg:           zerolog.Nop(),
		analyzer:       chat.New(""),
		limits:         window.DefaultLimits(),
		debounce:       debounce.DefaultQuiet,
		maxHistory:     history.DefaultCapacity,
		analyzeTimeout: 3 * time.Minute,
	}
}
