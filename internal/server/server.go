// Package server exposes static map rendering over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/MeKo-Tech/mapstatic/internal/composite"
	"github.com/MeKo-Tech/mapstatic/internal/staticmap"
	"github.com/MeKo-Tech/mapstatic/internal/tilesource"
	"github.com/MeKo-Tech/mapstatic/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server renders maps on request.
type Server struct {
	cfg       Config
	source    tilesource.Source
	logger    *slog.Logger
	startTime time.Time
}

// New creates a server that fetches tiles from source.
func New(cfg Config, source tilesource.Source, logger *slog.Logger) (*Server, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, errors.New("server needs a tile source")
	}

	return &Server{
		cfg:       cfg,
		source:    source,
		logger:    logger,
		startTime: time.Now(),
	}, nil
}

// Config returns the effective configuration.
func (s *Server) Config() Config {
	return s.cfg
}

// Router returns the HTTP handler with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Timeout))
	r.Use(withCORS)

	r.Get("/healthz", s.handleHealth)
	r.Get("/metadata", s.handleMetadata)
	r.Get("/map.{format}", s.handleMap)

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.Timeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log().Info("static map server listening",
			"addr", s.cfg.Addr,
			"default_provider", s.cfg.DefaultProvider,
			"providers", len(s.cfg.Providers),
			"max_tiles", s.cfg.MaxTiles)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.log().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Version:       s.cfg.Version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	})
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	m, _, err := s.newMap(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m.Metadata())
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	format, err := composite.FormatFromPath("map." + chi.URLParam(r, "format"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	m, provider, err := s.newMap(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	meta := m.Metadata()
	if meta.TileCount > s.cfg.MaxTiles {
		s.writeError(w, r, fmt.Errorf("%w: viewport needs %d tiles, limit is %d",
			types.ErrInvalidInput, meta.TileCount, s.cfg.MaxTiles))
		return
	}

	img, err := m.Render(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", s.cfg.CacheControl)
	w.Header().Set("X-Map-Zoom", strconv.Itoa(meta.Zoom))
	w.Header().Set("X-Map-BBox", meta.BBox)
	if a, ok := s.source.(attributor); ok {
		if text, err := a.Attribution(provider); err == nil && text != "" {
			w.Header().Set("X-Map-Attribution", text)
		}
	}
	w.WriteHeader(http.StatusOK)
	if err := composite.Encode(w, img, format); err != nil {
		s.log().Error("failed to write map", "error", err, "request_id", middleware.GetReqID(r.Context()))
	}
}

// attributor is implemented by sources that know the copyright notice of a provider.
type attributor interface {
	Attribution(provider string) (string, error)
}

// newMap builds the map for the request's query. Only allow-listed providers are accepted.
func (s *Server) newMap(r *http.Request) (*staticmap.Map, string, error) {
	params, err := paramsFromQuery(r.URL.Query(), s.cfg.DefaultProvider)
	if err != nil {
		return nil, "", err
	}
	if !slices.Contains(s.cfg.Providers, params.Provider) {
		return nil, "", fmt.Errorf("%w: provider %q is not allowed (allowed: %s)",
			types.ErrInvalidInput, params.Provider, strings.Join(s.cfg.Providers, ", "))
	}

	m, err := staticmap.New(params, s.source, s.log())
	return m, params.Provider, err
}

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError maps error kinds to HTTP status codes. Upstream and internal failures are
// logged in full but answered with a fixed message, so tile server responses never reach clients.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := http.StatusInternalServerError, "INTERNAL_ERROR", "internal error"
	switch {
	case errors.Is(err, types.ErrUnsupportedZoom):
		status, code, message = http.StatusBadRequest, "UNSUPPORTED_ZOOM", err.Error()
	case errors.Is(err, types.ErrInvalidInput):
		status, code, message = http.StatusBadRequest, "INVALID_INPUT", err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		status, code, message = http.StatusGatewayTimeout, "TILE_SERVER_TIMEOUT", "tile server timed out"
	case errors.Is(err, types.ErrTileFetchFailed):
		status, code, message = http.StatusBadGateway, "TILE_FETCH_FAILED", "fetching map tiles failed"
	case errors.Is(err, types.ErrDecodeFailed):
		status, code, message = http.StatusBadGateway, "TILE_DECODE_FAILED", "a map tile could not be decoded"
	}

	reqID := middleware.GetReqID(r.Context())
	if status >= http.StatusInternalServerError {
		s.log().Error("map request failed", "error", err, "status", status, "request_id", reqID)
	} else {
		s.log().Debug("rejected map request", "error", err, "status", status, "request_id", reqID)
	}

	writeJSON(w, status, errorResponse{Error: code, Message: message, RequestID: reqID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLogger logs one line per request through slog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log().Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
