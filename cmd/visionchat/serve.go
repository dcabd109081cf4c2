package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/xyzj/toolbox/loopfunc"

	"github.com/xyzj/visionchat"
	"github.com/xyzj/visionchat/httpapi"
	mcpsrv "github.com/xyzj/visionchat/mcp"
	"github.com/xyzj/visionchat/window"
)

var (
	serveHTTP  string
	serveStdio bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the boundary operations over MCP stdio and HTTP",
	Long: `Serve the boundary operations.

With --stdio (the default) every operation is an MCP tool on stdin/stdout.
With --http the same operations answer POST /api/{operation}, and
/metrics exposes the Prometheus counters. A headless window stands in for
the native one; a host reports moves and resizes with setWindowBounds, which
are saved after the quiet period.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// closing the window over the boundary ends the session
		win := window.NewHeadless(window.Rect{})
		win.OnClose(stop)
		e, err := openEnv(visionchat.WithWindow(win))
		if err != nil {
			return err
		}
		defer e.Close()
		restoreWindow(e, win)

		addr := serveHTTP
		if addr == "" {
			addr = e.cfg.HTTP.Addr
		}
		var srv *http.Server
		if addr != "" {
			srv = &http.Server{
				Addr:              addr,
				Handler:           httpapi.New(e.app, e.reg, e.logg).Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			loopfunc.GoFunc(func(params ...any) {
				e.logg.Info().Str("addr", addr).Msg("http api listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					e.logg.Error().Err(err).Msg("http api stopped")
					stop()
				}
			}, "http api", nil)
		}

		if serveStdio {
			err = mcpsrv.New(e.app, mcpsrv.WithVersion(version), mcpsrv.WithLogger(e.logg)).Listen(ctx, os.Stdin, os.Stdout)
			if errors.Is(err, context.Canceled) {
				err = nil
			}
		} else {
			<-ctx.Done()
		}

		if srv != nil {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if serr := srv.Shutdown(sctx); serr != nil {
				e.logg.Warn().Err(serr).Msg("http api shutdown")
			}
		}
		return err
	},
}

// restoreWindow puts the headless window where the last session left it.
func restoreWindow(e *env, win *window.Headless) {
	ws, err := e.app.GetWindowState()
	if err != nil || ws == nil {
		limits := window.DefaultLimits()
		win.SetBounds(window.Rect{Width: limits.DefaultWidth, Height: limits.DefaultHeight})
		return
	}
	win.SetBounds(window.Rect{X: ws.X, Y: ws.Y, Width: ws.Width, Height: ws.Height})
	if ws.IsMaximized {
		_ = win.Maximize()
	}
	e.logg.Debug().Interface("state", ws).Msg("window restored")
}

func init() {
	serveCmd.Flags().StringVar(&serveHTTP, "http", "", "Listen address of the HTTP API (overrides http.addr)")
	serveCmd.Flags().BoolVar(&serveStdio, "stdio", true, "Serve MCP on stdin and stdout")
	rootCmd.AddCommand(serveCmd)
}
