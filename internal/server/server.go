// Package server serves stored 404 pages: the JSON page API, the live
// view renderer used by host integrations, bundle downloads and the
// editor preview with websocket live reload.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fourohfour/monetizer/internal/analytics"
	"github.com/fourohfour/monetizer/internal/config"
	"github.com/fourohfour/monetizer/internal/document"
	apperrors "github.com/fourohfour/monetizer/internal/errors"
	"github.com/fourohfour/monetizer/internal/feature"
	"github.com/fourohfour/monetizer/internal/logging"
	"github.com/fourohfour/monetizer/internal/page"
	"github.com/fourohfour/monetizer/internal/store"
	"github.com/fourohfour/monetizer/internal/version"
)

// LiveReloadPath is the websocket endpoint.
const LiveReloadPath = "/ws"

// maxBodyBytes bounds page uploads.
const maxBodyBytes = 1 << 20

// PageStore is the persistence the server needs.
type PageStore interface {
	Create(ctx context.Context, cfg *page.Config) (*page.Config, error)
	Save(ctx context.Context, cfg *page.Config) error
	Get(ctx context.Context, id string) (*page.Config, error)
	List(ctx context.Context) ([]store.Summary, error)
	Delete(ctx context.Context, id string) error
	PlanFor(ctx context.Context, userID string) (analytics.Plan, error)
}

// Server is the page server.
type Server struct {
	config  *config.Config
	store   PageStore
	cache   *document.Cache
	hub     *Hub
	limiter *RateLimiter
	logger  logging.Logger
	now     func() time.Time

	live        document.Options
	preview     document.Options
	defaultPlan analytics.Plan

	httpServer   *http.Server
	serverMutex  sync.RWMutex
	shutdownOnce sync.Once
	hubCancel    context.CancelFunc
}

// New creates a server. cfg must have passed config validation.
func New(cfg *config.Config, st PageStore, logger logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	policy, err := document.ParseCustomCodePolicy(cfg.Render.CustomCode)
	if err != nil {
		return nil, err
	}
	plan, err := analytics.ParsePlan(cfg.Analytics.DefaultPlan)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:      cfg,
		store:       st,
		cache:       document.NewCache(cfg.Render.CacheEntries, cfg.Render.CacheTTL),
		hub:         NewHub(cfg.Server.AllowedOrigins, logger),
		logger:      logger.WithComponent("server"),
		now:         time.Now,
		defaultPlan: plan,
		live: document.Options{
			AnalyticsEndpoint: cfg.Analytics.Endpoint,
			MissingRating:     feature.ParseRatingFallback(cfg.Render.MissingRating),
			CustomCode:        policy,
		},
		preview: document.Options{
			Plan:          analytics.PlanFree,
			MissingRating: feature.ParseRatingFallback(cfg.Preview.MissingRating),
			CustomCode:    policy,
		},
	}
	if cfg.Preview.LiveReload {
		s.preview.LiveReloadURL = LiveReloadPath
	}
	if cfg.Server.ViewRateLimit > 0 {
		s.limiter = NewRateLimiter(cfg.Server.ViewRateLimit, cfg.Server.TrustProxy)
	}
	return s, nil
}

// Hub returns the live-reload hub; it satisfies watcher.Notifier.
func (s *Server) Hub() *Hub {
	return s.hub
}

// NotifyReload forwards to the hub.
func (s *Server) NotifyReload(pageID string) {
	s.hub.NotifyReload(pageID)
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.HandleFunc("GET /api/pages", s.handleListPages)
	mux.HandleFunc("POST /api/pages", s.handleCreatePage)
	mux.HandleFunc("GET /api/pages/{id}", s.handleGetPage)
	mux.HandleFunc("PUT /api/pages/{id}", s.handlePutPage)
	mux.HandleFunc("DELETE /api/pages/{id}", s.handleDeletePage)
	mux.HandleFunc("GET /api/pages/{id}/export", s.handleExport)

	view := http.Handler(http.HandlerFunc(s.handleView))
	if s.limiter != nil {
		view = s.limiter.Middleware(view)
	}
	mux.Handle("GET /api/view/{id}", view)

	mux.HandleFunc("GET /preview/{id}", s.handlePreview)
	mux.Handle("GET "+LiveReloadPath, s.hub)

	return s.addMiddleware(mux)
}

// Start runs the hub and serves until ctx is done or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	hubCtx, cancel := context.WithCancel(ctx)
	s.hubCancel = cancel
	go s.hub.Run(hubCtx)

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "Server listening", "addr", "http://"+addr)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown stops accepting requests and closes live-reload connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")

		if s.hubCancel != nil {
			s.hubCancel()
		}
		if s.limiter != nil {
			s.limiter.Stop()
		}

		s.serverMutex.RLock()
		srv := s.httpServer
		s.serverMutex.RUnlock()
		if srv != nil {
			shutdownErr = srv.Shutdown(ctx)
		}
	})
	return shutdownErr
}

func (s *Server) addMiddleware(next http.Handler) http.Handler {
	serverHeader := version.UserAgent()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", serverHeader)
		origin := r.Header.Get("Origin")
		if s.isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		defer func() {
			if rec := recover(); rec != nil {
				s.writeError(w, r, apperrors.NewInternalError(apperrors.ErrCodeInternalError,
					"handler panicked", fmt.Errorf("panic: %v", rec)))
			}
		}()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.logger.Debug(r.Context(), "Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start))
	})
}

func (s *Server) isAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	for _, allowed := range s.config.Server.AllowedOrigins {
		if origin == allowed || allowed == "*" {
			return true
		}
	}
	return false
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController and the websocket upgrade reach the
// underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
