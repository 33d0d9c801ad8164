package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewProfilingRouter mounts the pprof handlers under /debug
func NewProfilingRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Mount("/debug", middleware.Profiler())
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/debug/pprof/", http.StatusFound)
	})
	return r
}

// RunProfiling serves the profiling router on addr until ctx is cancelled
func RunProfiling(ctx context.Context, addr string) error {
	return serve(ctx, &http.Server{
		Addr:              addr,
		Handler:           NewProfilingRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}, "Profiling")
}
