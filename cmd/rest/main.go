package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"pdfchat-be/internal/bootstrap"
	"pdfchat-be/internal/config"
	"pdfchat-be/internal/server"
	"pdfchat-be/internal/tracer"
	"pdfchat-be/pkg/database"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.Open(cfg.Database.Connection, database.DefaultOptions(cfg.App.IsProduction()))
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, gormDB, cfg)
	if err != nil {
		log.Fatalf("Failed to bootstrap: %v", err)
	}
	defer container.Close()

	shutdownTracer := tracer.InitTracer(ctx, tracer.Options{
		Enabled:  cfg.App.OtelEnabled,
		Endpoint: cfg.App.OtelEndpoint,
	}, container.Logger)

	// 4. Start Background Services
	if err := container.Start(ctx); err != nil {
		log.Fatalf("Failed to start background services: %v", err)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
		if err := shutdownTracer(shutdownCtx); err != nil {
			log.Printf("Tracer shutdown: %v", err)
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
