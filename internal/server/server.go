package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"redesperanza/web/internal/config"
	"redesperanza/web/internal/middleware"
)

// Health checks hit often and are only logged when they fail.
var quietPaths = []string{"/healthz"}

type Routes interface {
	Mount(engine *gin.Engine)
}

type Server struct {
	engine   *gin.Engine
	http     *http.Server
	log      zerolog.Logger
	drainFor time.Duration
}

func New(cfg *config.AppConfig, log zerolog.Logger, routes Routes) (*Server, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.RedirectTrailingSlash = true
	engine.RedirectFixedPath = true
	engine.HandleMethodNotAllowed = true
	// Room for one photo plus the other form fields.
	engine.MaxMultipartMemory = cfg.Upload.MaxBytes + 1<<20
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(log, quietPaths...),
		middleware.Recovery(log),
	)
	engine.NoMethod(func(c *gin.Context) {
		c.String(http.StatusMethodNotAllowed, "Método no permitido")
	})
	routes.Mount(engine)

	drainFor := cfg.HTTP.ShutdownTimeout
	if drainFor <= 0 {
		drainFor = 10 * time.Second
	}

	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.HTTP.Host, strconv.Itoa(cfg.HTTP.Port)),
			Handler:           engine,
			ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
			ReadTimeout:       cfg.HTTP.ReadTimeout,
			WriteTimeout:      cfg.HTTP.WriteTimeout,
			IdleTimeout:       cfg.HTTP.IdleTimeout,
		},
		log:      log,
		drainFor: drainFor,
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Addr() string {
	return s.http.Addr
}

// ListenAndRun binds the configured address and calls Run.
func (s *Server) ListenAndRun(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	return s.Run(ctx, ln)
}

// Run serves on ln until ctx ends, then waits up to the drain timeout for
// in-flight requests. A clean drain returns nil.
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	served := make(chan error, 1)
	go func() { served <- s.http.Serve(ln) }()
	s.log.Info().Str("addr", ln.Addr().String()).Msg("http server listening")

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.log.Info().Dur("timeout", s.drainFor).Msg("draining http connections")
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.drainFor)
	defer cancel()
	if err := s.http.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("drain: %w", err)
	}
	return nil
}
