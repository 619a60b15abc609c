// Package server implements the HTTP/JSON API of the foliod daemon.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mlapp/folio/history"
	"github.com/mlapp/folio/llm"
	"github.com/mlapp/folio/mcp"
	"github.com/mlapp/folio/metrics"
	"github.com/mlapp/folio/portfolio"
	"github.com/rs/zerolog"
)

// Dispatcher sends prompts to LLM providers. *llm.Router implements it.
type Dispatcher interface {
	SendPrompt(ctx context.Context, req llm.Request) (*llm.Response, error)
	IsAvailable(name string) bool
	ListAvailable() []llm.Provider
	DefaultProvider() string
}

// Discovery lists what the MCP server offers. *mcp.Client implements it.
type Discovery interface {
	ListTools(ctx context.Context) ([]mcp.ToolDefinition, error)
	ListPrompts(ctx context.Context) ([]mcp.PromptDefinition, error)
	ListResources(ctx context.Context) ([]mcp.ResourceDefinition, error)
	Health(ctx context.Context) mcp.HealthStatus
}

// HistoryStore persists prompt history. *history.Store implements it.
type HistoryStore interface {
	Save(ctx context.Context, req history.SaveRequest) (*history.SaveResult, error)
	List(ctx context.Context) ([]history.Record, error)
	ListByType(ctx context.Context, promptType string) ([]history.Record, error)
	Page(ctx context.Context, q history.PageQuery) (*history.Page, error)
	Get(ctx context.Context, id int64) (*history.Record, error)
	Delete(ctx context.Context, id int64) error
}

var (
	_ Dispatcher   = (*llm.Router)(nil)
	_ Discovery    = (*mcp.Client)(nil)
	_ HistoryStore = (*history.Store)(nil)
)

// Deps are the services the handlers call into.
type Deps struct {
	Portfolio *portfolio.Service
	LLM       Dispatcher
	History   HistoryStore
	Discovery Discovery
	Metrics   *metrics.Metrics // optional; enables /metrics and HTTP collectors
}

// Config holds server configuration options.
type Config struct {
	Addr           string
	CORSOrigins    []string
	RequestTimeout time.Duration
	Logger         zerolog.Logger
}

// Server is the HTTP server for foliod.
type Server struct {
	deps       Deps
	router     chi.Router
	httpServer *http.Server
	addr       string
	logger     zerolog.Logger
}

// New creates a new HTTP server and builds its routes.
func New(cfg Config, deps Deps) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 2 * time.Minute
	}

	s := &Server{
		deps:   deps,
		addr:   cfg.Addr,
		logger: cfg.Logger.With().Str("component", "httpServer").Logger(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler(cfg.CORSOrigins))
	r.Use(s.loggingMiddleware)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.HTTPMiddleware)
	}
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Route("/api/portfolio", s.portfolioRoutes)
	r.Route("/api/market", s.marketRoutes)
	r.Route("/api/prompts", s.promptRoutes)
	r.Route("/api/resources", s.resourceRoutes)
	r.Route("/api/metadata", s.metadataRoutes)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, &apiError{status: http.StatusNotFound, kind: kindNotFound, message: "No route for " + r.Method + " " + r.URL.Path})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, &apiError{status: http.StatusMethodNotAllowed, kind: "Method Not Allowed", message: r.Method + " is not allowed on " + r.URL.Path})
	})

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", s.addr).Msg("Starting HTTP server")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info().Msg("Gracefully stopping HTTP server")
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		opts.AllowedOrigins = []string{"*"}
		opts.AllowCredentials = false
	}
	return cors.Handler(opts)
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		event := s.logger.Debug()
		if status >= http.StatusInternalServerError {
			event = s.logger.Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("requestId", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
