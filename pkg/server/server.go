// Package server exposes the video library and generator over HTTP.
//
// Routes:
//
//	GET    /api/videos          list videos, newest first
//	POST   /api/generate        generate a video into the library
//	GET    /api/videos/{name}   stream a video (video/mp4)
//	DELETE /api/videos/{name}   delete a video and its record
//	GET    /healthz             liveness
//	GET    /metrics             Prometheus metrics
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/haivivi/vidgen/pkg/library"
	"github.com/haivivi/vidgen/pkg/videogen"
)

// Defaults for generate requests that leave fields out.
const (
	DefaultDuration   = 4
	DefaultResolution = videogen.DefaultResolution
)

// Server handles the HTTP API.
type Server struct {
	gen     *videogen.Generator
	lib     *library.Library
	metrics *Metrics
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMetrics sets the metrics collectors. The default is NewMetrics().
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New creates a Server. gen must write into lib, i.e. be built with
// videogen.WithStore(lib.Files()).
func New(gen *videogen.Generator, lib *library.Library, opts ...Option) *Server {
	s := &Server{gen: gen, lib: lib}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/videos", s.listVideos)
		r.Post("/generate", s.generate)
		r.Get("/videos/{name}", s.getVideo)
		r.Delete("/videos/{name}", s.deleteVideo)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.requestsTotal.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
		s.logger.Debug("http request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method, "route", route,
			"status", ww.Status(), "bytes", ww.BytesWritten(),
			"elapsed", time.Since(start))
	})
}

func (s *Server) listVideos(w http.ResponseWriter, r *http.Request) {
	recs, err := s.lib.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []*library.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

type generateRequest struct {
	Prompt     string `json:"prompt"`
	Name       string `json:"name"`
	Duration   int    `json:"duration"`
	Resolution string `json:"resolution"`
	Model      string `json:"model"`

	// InputImage is an optional base64 image or data URL.
	InputImage string `json:"input_image"`
}

// maxGenerateBody fits a base64 reference image of MaxImageBytes.
const maxGenerateBody = 32 << 20

type generateResponse struct {
	Success bool            `json:"success"`
	Name    string          `json:"name"`
	Size    int64           `json:"size"`
	Video   *library.Record `json:"video"`
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	var in generateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxGenerateBody)).Decode(&in); err != nil {
		s.writeError(w, r, &videogen.ValidationError{Field: "body", Message: err.Error()})
		return
	}
	var img *videogen.Image
	if strings.TrimSpace(in.InputImage) != "" {
		var err error
		if img, err = videogen.DecodeImageDataURL(in.InputImage); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	name, err := s.lib.Name(in.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if in.Duration == 0 {
		in.Duration = DefaultDuration
	}
	if strings.TrimSpace(in.Resolution) == "" {
		in.Resolution = DefaultResolution
	}
	req := &videogen.Request{
		Prompt:          in.Prompt,
		DurationSeconds: in.Duration,
		Resolution:      in.Resolution,
		Model:           in.Model,
		OutputPath:      name,
		Image:           img,
	}

	s.metrics.activeGenerations.Inc()
	start := time.Now()
	res, err := s.gen.Generate(r.Context(), req)
	s.metrics.activeGenerations.Dec()
	if err != nil {
		backend := ""
		if e, ok := videogen.AsRemoteError(err); ok {
			backend = e.Backend
		}
		s.metrics.ObserveGeneration(backend, videogen.Category(err), time.Since(start), 0)
		s.writeError(w, r, err)
		return
	}
	s.metrics.ObserveGeneration(res.Backend, "ok", time.Since(start), res.Bytes)

	rec, err := s.lib.Record(r.Context(), name, req, res)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Success: true, Name: name, Size: res.Bytes, Video: rec})
}

func (s *Server) getVideo(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rc, err := s.lib.Open(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "video/mp4")
	if rec, err := s.lib.Get(r.Context(), name); err == nil && rec.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(rec.Size, 10))
	}
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warn("stream video", "name", name, "error", err)
	}
}

func (s *Server) deleteVideo(w http.ResponseWriter, r *http.Request) {
	if err := s.lib.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type errorResponse struct {
	Error     string `json:"error"`
	Category  string `json:"category"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFor maps an error to an HTTP status and category.
func statusFor(err error) (int, string) {
	if errors.Is(err, library.ErrNotFound) {
		return http.StatusNotFound, "not_found"
	}
	cat := videogen.Category(err)
	switch cat {
	case videogen.CategoryValidation:
		return http.StatusBadRequest, cat
	case videogen.CategoryAuth, videogen.CategoryNetwork, videogen.CategoryRemote, videogen.CategoryFailed:
		return http.StatusBadGateway, cat
	case videogen.CategoryTimeout:
		return http.StatusGatewayTimeout, cat
	}
	return http.StatusInternalServerError, cat
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, cat := statusFor(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "category", cat, "error", err)
	}
	writeJSON(w, status, errorResponse{
		Error:     err.Error(),
		Category:  cat,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
