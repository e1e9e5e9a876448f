// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"BRVMSentinel/internal/collector"
	"BRVMSentinel/internal/recorder"
)

// Server serves the stock analysis endpoints.
type Server struct {
	addr      string
	collector *collector.Collector
	recorder  recorder.Recorder
	router    *gin.Engine
}

// Config wires a Server.
type Config struct {
	Addr      string
	Collector *collector.Collector
	Recorder  recorder.Recorder
}

// NewServer builds the router. A nil recorder serves empty histories.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Collector == nil {
		return nil, errors.New("collector is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Recorder == nil {
		cfg.Recorder = recorder.NewNoopRecorder()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{
		addr:      cfg.Addr,
		collector: cfg.Collector,
		recorder:  cfg.Recorder,
		router:    router,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")
	api.GET("/health", s.handleHealth)

	stocks := api.Group("/stocks/:symbol", validSymbol())
	stocks.GET("/indicators", s.handleIndicators)
	stocks.GET("/signals", s.handleSignals)
	stocks.GET("/recommendation", s.handleRecommendation)
	stocks.GET("/history", s.handleHistory)

	api.DELETE("/cache/:symbol", validSymbol(), s.handleInvalidate)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Msg("http api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http api: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http api: %w", err)
	}
	log.Info().Msg("http api stopped")
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		ev := log.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = log.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	}
}
