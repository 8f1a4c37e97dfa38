package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/store"
)

const (
	// DefaultMaxBodyBytes bounds request bodies.
	DefaultMaxBodyBytes = 4 << 20

	shutdownTimeout = 5 * time.Second
)

// Watcher is implemented by backends that notice changes made outside the
// server, such as *store.File.
type Watcher interface {
	Watch(ctx context.Context, fn func([]dashboard.Entry)) error
}

// Server serves a store.Backend over HTTP.
type Server struct {
	backend      store.Backend
	name         string
	hub          *Hub
	schema       *jsonschema.Schema
	logger       *log.Logger
	maxBodyBytes int64
	router       chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and event logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithBackendName sets the backend name reported by /healthz.
func WithBackendName(name string) Option { return func(s *Server) { s.name = name } }

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option { return func(s *Server) { s.maxBodyBytes = n } }

// New builds a Server for backend. The server does not own the backend.
func New(backend store.Backend, opts ...Option) (*Server, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile dashboards schema: %w", err)
	}
	s := &Server{
		backend:      backend,
		name:         fmt.Sprintf("%T", backend),
		hub:          NewHub(),
		schema:       schema,
		logger:       log.Default(),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/dashboards", s.handleDashboards)
	r.Put("/dashboards", s.handleReplace)
	r.Get("/dashboards/watch", s.handleWatch)
	r.Put("/empty", s.handleScaffold)
	r.Get("/{link}", s.handleReport)
	r.Put("/{link}", s.handleRename)
	r.Delete("/{link}", s.handleDelete)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, errors.ErrCodeNotFound, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, errors.ErrCodeInvalidInput, r.Method+" not allowed on "+r.URL.Path)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Hub returns the hub that feeds /dashboards/watch.
func (s *Server) Hub() *Hub { return s.hub }

// logRequests logs one line per request at debug level, and at warn level
// for server errors.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		kv := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"dur", time.Since(start).Round(time.Microsecond),
			"req", middleware.GetReqID(r.Context()),
		}
		if status >= 500 {
			s.logger.Warn("request failed", kv...)
			return
		}
		s.logger.Debug("request", kv...)
	})
}

// Run listens on addr and serves until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully. When the
// backend implements [Watcher], external changes are published to the hub
// for the lifetime of the server.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("serving dashboards", "addr", ln.Addr().String(), "backend", s.name)
		if err := srv.Serve(ln); !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if w, ok := s.backend.(Watcher); ok {
		g.Go(func() error {
			return w.Watch(ctx, func(entries []dashboard.Entry) {
				if s.hub.Publish(entries) {
					s.logger.Info("dashboards changed on disk", "entries", len(entries))
				}
			})
		})
	}
	return g.Wait()
}
