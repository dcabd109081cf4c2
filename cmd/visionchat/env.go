package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/xyzj/toolbox/crypto"

	"github.com/xyzj/visionchat"
	"github.com/xyzj/visionchat/chat"
	"github.com/xyzj/visionchat/config"
	"github.com/xyzj/visionchat/storage"
	"github.com/xyzj/visionchat/window"
)

// env is what every subcommand works with.
type env struct {
	cfg  *config.Config
	logg zerolog.Logger
	reg  *prometheus.Registry
	app  *visionchat.App
}

// openEnv loads the configuration and opens the state. extra options are
// applied after the configured ones.
func openEnv(extra ...visionchat.Opts) (*env, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	logg := newLogger(cfg.Log, verbose, os.Stderr)
	backend, err := openBackend(cfg.Storage)
	if err != nil {
		return nil, err
	}
	logg.Debug().Str("backend", cfg.Storage.Backend).Str("path", cfg.Storage.Path).Msg("state backend opened")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	limits := window.DefaultLimits()
	limits.MinWidth = cfg.Window.MinWidth
	limits.MinHeight = cfg.Window.MinHeight
	limits.MaxFactor = cfg.Window.MaxFactor

	opts := []visionchat.Opts{
		visionchat.WithStorage(backend),
		visionchat.WithLogger(logg),
		visionchat.WithMetrics(reg),
		visionchat.WithAnalyzer(chat.New(cfg.AI.Model,
			chat.WithAPIKey(cfg.AI.APIKey),
			chat.WithBaseURL(cfg.AI.BaseURL),
			chat.WithTimeout(cfg.AI.Timeout),
		)),
		visionchat.WithAnalyzeTimeout(cfg.AI.Timeout),
		visionchat.WithMaxHistory(cfg.History.Capacity),
		visionchat.WithDebounce(cfg.Window.Debounce),
		visionchat.WithLimits(limits),
	}
	if d := cfg.Window.Display; d.Known() {
		opts = append(opts, visionchat.WithDisplay(window.Display{
			WorkArea: window.Rect{X: d.X, Y: d.Y, Width: d.Width, Height: d.Height},
		}))
	}
	return &env{
		cfg:  cfg,
		logg: logg,
		reg:  reg,
		app:  visionchat.New(append(opts, extra...)...),
	}, nil
}

func (e *env) Close() {
	if err := e.app.Close(); err != nil {
		e.logg.Warn().Err(err).Msg("closing state backend")
	}
}

// newLogger builds the process logger: human readable on a terminal, JSON
// lines when configured.
func newLogger(lc config.LogConfig, verbose bool, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(lc.Level))
	if err != nil || lc.Level == "" {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	if !lc.JSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Str("app", config.AppName).Logger()
}

// openBackend creates the storage backend named in sc.
func openBackend(sc config.StorageConfig) (storage.Storage, error) {
	if sc.Backend != "memory" && sc.Backend != "redis" {
		if err := os.MkdirAll(filepath.Dir(sc.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create profile directory: %w", err)
		}
	}
	switch sc.Backend {
	case "file":
		return storage.NewFileStorage(sc.Path), nil
	case "bolt":
		return storage.NewBoltStorage(sc.Path)
	case "sqlite":
		return storage.NewSQLiteStorage(sc.Path)
	case "redis":
		ns := sc.Redis.Namespace
		if ns == "" {
			// one namespace per profile path
			ns = crypto.GetSHA1(sc.Path)[:12]
		}
		cli := redis.NewClient(&redis.Options{
			Addr:     sc.Redis.Addr,
			Password: sc.Redis.Password,
			DB:       sc.Redis.DB,
		})
		return storage.NewRedisStorage(cli, storage.WithNamespace(ns)), nil
	case "memory":
		return storage.NewMemoryStorage(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", sc.Backend)
}
