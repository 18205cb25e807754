// Package http exposes the aggregation and training surfaces over a JSON
// API. The server is local-only by default and holds the mutable filter
// state; everything else it serves is derived from the store and session.
package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/gymrun/gymrun/internal/config"
	"github.com/gymrun/gymrun/internal/domain"
	"github.com/gymrun/gymrun/internal/metrics"
	"github.com/gymrun/gymrun/internal/store"
	"github.com/gymrun/gymrun/internal/train"
	"github.com/gymrun/gymrun/internal/verify"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// Server is the JSON API server.
type Server struct {
	router    *mux.Router
	server    *http.Server
	cfg       config.ServerConfig
	store     *store.Store
	generator *train.Generator
	session   *train.Session
	checker   *verify.HTTPChecker

	mu      sync.Mutex
	filters domain.Filters
}

// NewServer wires the API over the given collaborators.
func NewServer(cfg config.ServerConfig, st *store.Store, gen *train.Generator, sess *train.Session, checker *verify.HTTPChecker) (*Server, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("port %d is busy or unavailable: %w", cfg.Port, err)
	}
	listener.Close()

	s := &Server{
		router:    mux.NewRouter(),
		cfg:       cfg,
		store:     st,
		generator: gen,
		session:   sess,
		checker:   checker,
		filters:   domain.DefaultFilters(),
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)

	// Metrics and the websocket bypass the JSON content type and the
	// request timeout; both manage their own lifecycles.
	s.router.Handle("/metrics", metrics.Handler()).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket).Methods("GET")

	api := s.router.PathPrefix("/").Subrouter()
	api.Use(s.timeoutMiddleware)
	api.Use(jsonContentTypeMiddleware)

	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/problems", s.handleProblems).Methods("GET")
	api.HandleFunc("/facets", s.handleFacets).Methods("GET")
	api.HandleFunc("/filters", s.handleGetFilters).Methods("GET")
	api.HandleFunc("/filters", s.handleUpdateFilters).Methods("PUT")
	api.HandleFunc("/tags", s.handleUpdateTags).Methods("PUT")
	api.HandleFunc("/reload", s.handleReload).Methods("POST")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/stats/codeforces/{handle}", s.handleCodeforcesStats).Methods("GET")
	api.HandleFunc("/training/generate", s.handleGenerate).Methods("POST")
	api.HandleFunc("/training/session", s.handleSession).Methods("GET")
	api.HandleFunc("/training/pause", s.handlePause).Methods("POST")
	api.HandleFunc("/training/resume", s.handleResume).Methods("POST")
	api.HandleFunc("/training/stop", s.handleStop).Methods("POST")
	api.HandleFunc("/training/solved", s.handleSolved).Methods("POST")

	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()[:8]
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		requestID, _ := r.Context().Value(requestIDKey).(string)
		log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("request")
	})
}

func (s *Server) timeoutMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Start runs the server until it fails or is shut down.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("http server listening")
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("http server shutting down")
	return s.server.Shutdown(ctx)
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return s.server.Addr
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
