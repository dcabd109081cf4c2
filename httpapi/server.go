// Package httpapi serves the boundary operations over HTTP for clients that
// cannot speak MCP, plus the Prometheus metrics of the process.
package httpapi

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/xyzj/toolbox/json"

	"github.com/xyzj/visionchat"
)

// MaxBodyBytes bounds one request body; analyzeImage carries base64 images.
const MaxBodyBytes = 32 << 20

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Server routes HTTP requests to an App.
type Server struct {
	app      *visionchat.App
	gatherer prometheus.Gatherer
	logg     zerolog.Logger
}

// New creates a Server. gatherer may be nil, then /metrics is not routed.
func New(app *visionchat.App, gatherer prometheus.Gatherer, logg zerolog.Logger) *Server {
	return &Server{
		app:      app,
		gatherer: gatherer,
		logg:     logg,
	}
}

// Router returns the HTTP handler.
//
//	GET  /healthz
//	GET  /api/operations      the operation catalog
//	POST /api/{operation}     body: the arguments object, reply: the envelope
//	GET  /metrics
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	r.Get("/api/operations", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, visionchat.Operations)
	})
	r.Post("/api/{operation}", s.handleInvoke)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	op := chi.URLParam(r, "operation")
	if _, ok := visionchat.LookupOperation(op); !ok {
		respondError(w, http.StatusNotFound, "unknown_operation", "unknown operation "+op)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			respondError(w, http.StatusRequestEntityTooLarge, "body_too_large", err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if len(body) > 0 {
		var probe map[string]any
		if err := json.Unmarshal(body, &probe); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "arguments must be a JSON object")
			return
		}
	}
	env := s.app.Invoke(r.Context(), op, body)
	respondJSON(w, http.StatusOK, env)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logg.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
