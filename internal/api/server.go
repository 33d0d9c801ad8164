package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"gostat/app"
	"gostat/internal/errors"

	"github.com/gin-gonic/gin"
)

// Server is the HTTP front end for the statistics services
type Server struct {
	router   *gin.Engine
	services []*app.StatsService
}

// NewServer builds the gin engine and registers one route per service
func NewServer(services []*app.StatsService) *Server {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery(), RequestID(), AccessLog())

	s := &Server{
		router:   router,
		services: services,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	for _, svc := range s.services {
		s.router.GET("/"+svc.Name(), NewStatsHandler(svc).GetStats)
	}

	s.router.GET("/datasets", handleDatasets(describe(s.services)))
	s.router.GET("/docs", handleDocs(renderDocs(s.services)))
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.router.NoRoute(func(c *gin.Context) {
		respondError(c, errors.NotFound("route "+c.Request.URL.Path))
	})
	s.router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"message": "method not allowed", "code": "METHOD_NOT_ALLOWED"})
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	return serve(ctx, &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}, "API")
}

func serve(ctx context.Context, srv *http.Server, name string) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[%s] listening on %s", name, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("%s server failed: %w", name, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Printf("[%s] shutting down", name)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s shutdown failed: %w", name, err)
	}
	return nil
}
