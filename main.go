package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"gostat/internal/api"
	"gostat/internal/config"
	"gostat/internal/container"
	"gostat/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)
	logging.SetLevel(appConfig.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	if err := appContainer.InitSources(ctx); err != nil {
		log.Fatalf("Failed to initialize dataset sources: %v", err)
	}

	// Datasets are loaded once and never modified afterwards
	if err := appContainer.LoadServices(ctx); err != nil {
		log.Fatalf("Failed to load datasets: %v", err)
	}

	server := api.NewServer(appContainer.OrderedServices())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, ":"+appConfig.Server.Port)
	})
	if appConfig.Profiling.Enabled {
		g.Go(func() error {
			return api.RunProfiling(gctx, ":"+appConfig.Profiling.Port)
		})
	}

	if err := g.Wait(); err != nil {
		log.Printf("Server stopped with error: %v", err)
		return
	}
	log.Println("Server stopped")
}
