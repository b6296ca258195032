// Package server exposes the estimator over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/goliatone/go-carvalue/pkg/model"
	"github.com/goliatone/go-carvalue/pkg/openapi"
	"github.com/goliatone/go-carvalue/pkg/orchestrator"
	"github.com/goliatone/go-carvalue/pkg/render"
	"github.com/goliatone/go-carvalue/pkg/themes"
)

const (
	// DefaultMaxBodyBytes caps a form submission.
	DefaultMaxBodyBytes int64 = 64 << 10
	// RuntimePrefix is where the browser runtime is served.
	RuntimePrefix = "/runtime/"

	htmlContentType = "text/html"
)

// ModelStatus reports whether a model is currently loaded.
type ModelStatus interface {
	Loaded() bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger routes request diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithModelStatus lets /healthz report the model state.
func WithModelStatus(status ModelStatus) Option {
	return func(s *Server) {
		s.status = status
	}
}

// WithRuntimeFS serves fsys under /runtime/.
func WithRuntimeFS(fsys fs.FS) Option {
	return func(s *Server) {
		s.runtime = fsys
	}
}

// WithMaxBodyBytes caps the size of POST bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithOpenAPIOptions customises the generated /openapi.json document.
func WithOpenAPIOptions(options ...openapi.Option) Option {
	return func(s *Server) {
		s.openapiOpts = append(s.openapiOpts, options...)
	}
}

// Server routes requests to the orchestrator.
type Server struct {
	orch        *orchestrator.Orchestrator
	logger      *slog.Logger
	status      ModelStatus
	runtime     fs.FS
	maxBody     int64
	openapiOpts []openapi.Option

	docOnce sync.Once
	doc     []byte
	docErr  error
}

// New returns a Server backed by orch.
func New(orch *orchestrator.Orchestrator, options ...Option) *Server {
	s := &Server{
		orch:    orch,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxBody: DefaultMaxBodyBytes,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleForm)
	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /openapi.json", s.handleOpenAPI)
	if s.runtime != nil {
		mux.Handle("GET "+RuntimePrefix, http.StripPrefix(RuntimePrefix, http.FileServerFS(s.runtime)))
	}
	return s.logRequests(mux)
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	renderer, ok := s.negotiate(w, r)
	if !ok {
		return
	}

	output, err := s.orch.RenderForm(r.Context(), s.request(r, renderer))
	if err != nil {
		s.fail(w, r, "render form", err)
		return
	}
	s.write(w, renderer.ContentType(), http.StatusOK, output)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := r.ParseForm(); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		http.Error(w, http.StatusText(status), status)
		return
	}

	renderer, ok := s.negotiate(w, r)
	if !ok {
		return
	}

	output, estimate, err := s.orch.RenderEstimate(r.Context(), s.request(r, renderer), r.PostForm)
	if err != nil {
		s.fail(w, r, "render estimate", err)
		return
	}
	s.write(w, renderer.ContentType(), statusFor(renderer, estimate), output)
}

type health struct {
	Status string `json:"status"`
	Model  string `json:"model,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	payload := health{Status: "ok"}
	if s.status != nil {
		payload.Model = "missing"
		if s.status.Loaded() {
			payload.Model = "loaded"
		}
	}
	body, _ := json.Marshal(payload)
	s.write(w, "application/json", http.StatusOK, append(body, '\n'))
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	s.docOnce.Do(func() {
		doc, err := openapi.Build(context.WithoutCancel(r.Context()), s.orch.Schema(), s.openapiOpts...)
		if err != nil {
			s.docErr = err
			return
		}
		raw, err := doc.MarshalJSON()
		if err != nil {
			s.docErr = fmt.Errorf("openapi: encode: %w", err)
			return
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			s.docErr = fmt.Errorf("openapi: indent: %w", err)
			return
		}
		buf.WriteByte('\n')
		s.doc = buf.Bytes()
	})
	if s.docErr != nil {
		s.fail(w, r, "openapi", s.docErr)
		return
	}
	s.write(w, "application/json", http.StatusOK, s.doc)
}

// negotiate picks a renderer from ?renderer= or the Accept header.
func (s *Server) negotiate(w http.ResponseWriter, r *http.Request) (render.Renderer, bool) {
	registry := s.orch.Registry()
	if name := strings.TrimSpace(r.URL.Query().Get("renderer")); name != "" {
		renderer, err := registry.Get(name)
		if err != nil {
			http.Error(w, fmt.Sprintf("renderer %q not found", name), http.StatusNotFound)
			return nil, false
		}
		return renderer, true
	}

	renderer, err := registry.Negotiate(r.Header.Get("Accept"), s.orch.DefaultRenderer())
	if err != nil {
		http.Error(w, http.StatusText(http.StatusNotAcceptable), http.StatusNotAcceptable)
		return nil, false
	}
	return renderer, true
}

func (s *Server) request(r *http.Request, renderer render.Renderer) orchestrator.Request {
	return orchestrator.Request{
		Renderer:     renderer.Name(),
		ThemeVariant: strings.TrimSpace(r.URL.Query().Get("theme")),
	}
}

// statusFor keeps HTML result pages at 200 so browsers always show the
// message; machine clients get a status that reflects the failure.
func statusFor(renderer render.Renderer, estimate model.Estimate) int {
	if strings.HasPrefix(renderer.ContentType(), htmlContentType) {
		return http.StatusOK
	}
	switch estimate.ErrorKind {
	case model.ErrorKindModelUnavailable:
		return http.StatusServiceUnavailable
	case model.ErrorKindInput, model.ErrorKindPrediction:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusOK
	}
}

func (s *Server) write(w http.ResponseWriter, contentType string, status int, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.logger.Debug("write response", "error", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, themes.ErrThemeNotFound) || errors.Is(err, themes.ErrVariantNotFound) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.logger.Error(op, "path", r.URL.Path, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status)
	})
}
