// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jeranaias/docchat/internal/config"
	"github.com/jeranaias/docchat/internal/docs"
)

// Fixed answers and messages of the API.
const (
	RootMessage      = "Docs chat API is running"
	EmptyQuestion    = "Question cannot be empty"
	NoResultsAnswer  = "No relevant information found in the documentation."
	InternalError    = "Internal Server Error"
	RateLimitedError = "rate limited"
	BodyTooLarge     = "request body too large"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Retriever finds documentation chunks for a question.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]docs.Chunk, error)
	Count() int
}

// Generator produces an answer from retrieved context. It reports failures
// inside the answer text.
type Generator interface {
	Answer(ctx context.Context, question string, chunks []string) string
	Ready(ctx context.Context) error
}

// Server wires the routes and middleware around a retriever and generator.
type Server struct {
	cfg       config.ServerConfig
	retriever Retriever
	generator Generator
	limiter   *clientLimiter
	engine    *gin.Engine
	logger    zerolog.Logger
	started   time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a server. Zero config values fall back to the defaults.
func New(cfg config.ServerConfig, retriever Retriever, generator Generator, opts ...Option) *Server {
	defaults := config.Default().Server
	if cfg.Addr == "" {
		cfg.Addr = defaults.Addr
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = defaults.AllowedOrigins
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if cfg.TopK <= 0 {
		cfg.TopK = defaults.TopK
	}

	s := &Server{
		cfg:       cfg,
		retriever: retriever,
		generator: generator,
		logger:    zerolog.Nop(),
		started:   time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.RateLimit > 0 {
		s.limiter = newClientLimiter(cfg.RateLimit, cfg.RateBurst)
	}

	s.engine = gin.New()
	s.engine.Use(
		requestID(),
		requestLogger(s.logger),
		recovery(s.logger),
		cors(cfg.AllowedOrigins),
	)
	s.registerRoutes()
	return s
}

// registerRoutes attaches all HTTP routes to the router.
func (s *Server) registerRoutes() {
	s.engine.GET("/", s.root)
	s.engine.GET("/health", s.health)

	chat := s.engine.Group("/chat")
	if s.limiter != nil {
		chat.Use(rateLimit(s.limiter))
	}
	chat.Use(bodyLimit(s.cfg.MaxBodyBytes))
	chat.POST("", s.chat)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.cfg.Addr
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	if s.limiter != nil {
		go s.limiter.cleanupLoop(ctx)
	}

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("docs chat API listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info().Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
