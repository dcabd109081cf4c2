package visionchat

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/xyzj/visionchat/boundary"
	"github.com/xyzj/visionchat/chat"
	"github.com/xyzj/visionchat/history"
	"github.com/xyzj/visionchat/schema"
	"github.com/xyzj/visionchat/storage"
	"github.com/xyzj/visionchat/window"
)

// ErrClosed is returned by storage operations after Close.
var ErrClosed = errors.New("application state is closed")

// New creates the application state context. It is built once at startup and
// handed to every boundary transport.
//
// Default configuration:
//   - Storage: in-memory (use WithStorage for a file backed profile)
//   - History capacity: 1000 messages
//   - Window geometry quiet period: 500ms
//   - Analyzer: an ARK analyzer without API key
func New(opts ...Opts) *App {
	opt := defaultOpt()
	for _, o := range opts {
		o(opt)
	}
	wrapOpts := []boundary.Opts{boundary.WithLogger(opt.logg)}
	if opt.registerer != nil {
		wrapOpts = append(wrapOpts, boundary.WithMetrics(boundary.NewMetrics("visionchat", opt.registerer)))
	}
	store := storage.NewStore(opt.dataStorage, storage.WithLogger(opt.logg))
	a := &App{
		cnf:     opt,
		store:   store,
		history: history.New(store, opt.maxHistory),
		wrap:    boundary.New(wrapOpts...),
	}
	if opt.window != nil {
		a.AttachWindow(opt.window)
	}
	return a
}

// App is the single shared application state.
//
// Store and history have no locking of their own; mu plays the role of the
// single control thread, so every operation touching them, including the
// debounced window writes, runs under it.
type App struct {
	mu      sync.Mutex
	cnf     *Opt
	store   *storage.Store
	history *history.Log
	wrap    *boundary.Wrapper
	win     window.Controller
	tracker *window.Tracker
	closed  bool
}

// withStore runs f on the control thread.
func (a *App) withStore(f func() error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	return f()
}

// GetSettings returns the validated settings record, or an empty one.
func (a *App) GetSettings() (schema.Settings, error) {
	return boundary.Value(a.wrap, "getSettings", boundary.KindStorage, func() (schema.Settings, error) {
		var s schema.Settings
		err := a.withStore(func() error {
			s = storage.Get(a.store, storage.KeySettings, schema.Settings{}, schema.DecodeSettings)
			return nil
		})
		return s, err
	})
}

// SetSettings replaces the settings record. raw must be a JSON object.
func (a *App) SetSettings(raw []byte) bool {
	return a.wrap.Bool("setSettings", func() error {
		s, err := schema.DecodeSettings(raw)
		if err != nil {
			return err
		}
		return a.withStore(func() error {
			return a.store.Put(storage.KeySettings, s)
		})
	}, rawArg(raw))
}

// GetAiStatus reports the analyzer configuration. It touches no persisted
// state and is not wrapped.
func (a *App) GetAiStatus() chat.Status {
	return a.cnf.analyzer.Status()
}

// AnalyzeImage validates the request and forwards it to the AI service.
// Rejections and service failures come back as *boundary.Error; a missing API
// key is tagged API_KEY_MISSING, everything else IMAGE_ANALYSIS.
func (a *App) AnalyzeImage(ctx context.Context, imageData, mimeType, prompt string) (chat.Result, error) {
	return boundary.Value(a.wrap, "analyzeImage", boundary.KindImageAnalysis, func() (chat.Result, error) {
		req := chat.Request{ImageData: imageData, MimeType: mimeType, Prompt: prompt}
		if err := req.Validate(); err != nil {
			return chat.Result{}, err
		}
		ctx, cancel := context.WithTimeout(ctx, a.cnf.analyzeTimeout)
		defer cancel()
		res, err := a.cnf.analyzer.Analyze(ctx, req)
		if errors.Is(err, chat.ErrAPIKeyMissing) {
			return chat.Result{}, &boundary.Error{Kind: boundary.KindAPIKeyMissing, Err: err}
		}
		return res, err
	}, fmt.Sprintf("imageData(%d bytes)", len(imageData)), mimeType, prompt)
}

// GetChatHistory returns the stored messages in insertion order.
func (a *App) GetChatHistory() ([]schema.ChatMessage, error) {
	return boundary.Value(a.wrap, "getChatHistory", boundary.KindStorage, func() ([]schema.ChatMessage, error) {
		var msgs []schema.ChatMessage
		err := a.withStore(func() error {
			msgs = a.history.List()
			return nil
		})
		return msgs, err
	})
}

// SaveMessage appends raw to the history. It returns false when raw is not a
// valid chat message or the write fails; re-saving after a failure is safe.
func (a *App) SaveMessage(raw []byte) bool {
	return a.wrap.Bool("saveMessage", func() error {
		return a.withStore(func() error {
			return a.history.Append(raw)
		})
	}, rawArg(raw))
}

// SaveChatMessage is SaveMessage for a typed message.
func (a *App) SaveChatMessage(msg schema.ChatMessage) bool {
	return a.wrap.Bool("saveMessage", func() error {
		return a.withStore(func() error {
			return a.history.AppendMessage(msg)
		})
	}, msg)
}

// ClearHistory empties the history.
func (a *App) ClearHistory() bool {
	return a.wrap.Bool("clearHistory", func() error {
		return a.withStore(a.history.Clear)
	})
}

// DeleteMessage removes every message with the given id. An unknown id is a
// successful no-op.
func (a *App) DeleteMessage(id string) bool {
	return a.wrap.Bool("deleteMessage", func() error {
		return a.withStore(func() error {
			return a.history.Delete(id)
		})
	}, id)
}

// Close cancels any pending window write and closes the backend. A geometry
// change inside the last quiet period is dropped.
func (a *App) Close() error {
	a.mu.Lock()
	tr := a.tracker
	a.mu.Unlock()
	if tr != nil {
		tr.Close()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	return a.store.Close()
}

func rawArg(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
