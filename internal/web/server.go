package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"tushare-mcp/internal/ratelimit"
	"tushare-mcp/internal/tools"
)

// Options configures the HTTP transport
type Options struct {
	Addr        string
	JWTSecret   string // empty disables bearer auth on /mcp
	CORSOrigins []string
	Limits      func() []ratelimit.Status // optional, serves /api/limits
}

// Server serves the MCP streamable-HTTP endpoint plus health, metrics and
// a read-only catalogue API
type Server struct {
	opts     Options
	mcp      *server.MCPServer
	registry *tools.Registry
	srv      *http.Server
}

// NewServer creates a new web server
func NewServer(s *server.MCPServer, reg *tools.Registry, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	return &Server{opts: opts, mcp: s, registry: reg}
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Mcp-Session-Id", "Mcp-Protocol-Version"},
		ExposedHeaders: []string{"Mcp-Session-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/tools", s.handleTools)
		r.Get("/universes", s.handleUniverses)
		r.Get("/universes/{id}", s.handleUniverse)
		if s.opts.Limits != nil {
			r.Get("/limits", s.handleLimits)
		}
	})

	r.Group(func(r chi.Router) {
		if s.opts.JWTSecret != "" {
			r.Use(BearerAuth(s.opts.JWTSecret))
		}
		r.Handle("/mcp", server.NewStreamableHTTPServer(s.mcp))
	})

	return r
}

// Start listens until Shutdown is called
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().
		Str("addr", s.opts.Addr).
		Bool("auth", s.opts.JWTSecret != "").
		Msg("MCP HTTP transport listening")

	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}
