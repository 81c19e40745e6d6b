package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecosort/internal/capture"
	"ecosort/internal/classify"
	"ecosort/internal/config"
	"ecosort/internal/db"
	"ecosort/internal/handlers"
	"ecosort/internal/scanner"
	"ecosort/internal/scheduler"
	"ecosort/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("ecosort starting...")
	log.Printf("  Database: %s", cfg.DBPath)
	log.Printf("  Port: %d", cfg.Port)
	log.Printf("  Tick: %v, cooldown: %v, motion threshold: %d", cfg.TickInterval, cfg.Cooldown, cfg.MotionThreshold)

	// Initialize database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	// Initialize profile/progress store
	st := store.New(database)

	// Capture device and classifier. The synthetic device and the stub
	// classifier stand in for real camera and model backends; both sit
	// behind interfaces.
	device := capture.NewSyntheticDevice(cfg.FrameWidth, cfg.FrameHeight, 20)
	classifier := classify.NewStubClassifier()

	// Initialize scan controller
	controller := scanner.New(device, classifier, st, scanner.Config{
		TickInterval:    cfg.TickInterval,
		Cooldown:        cfg.Cooldown,
		MotionThreshold: cfg.MotionThreshold,
		RefreshInterval: cfg.RefreshInterval,
	})
	defer controller.Stop()

	// Initialize maintenance scheduler
	sched, err := scheduler.New(st, cfg.CleanupCron, cfg.RetentionDays)
	if err != nil {
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Initialize handlers
	h := handlers.New(cfg, st, controller)

	// Set up HTTP server
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // No timeout for SSE
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		controller.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	// Start server
	log.Printf("Server listening on http://localhost:%d", cfg.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped")
}
