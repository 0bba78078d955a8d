package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/story-director/internal/config"
	"github.com/jwebster45206/story-director/internal/handlers"
	"github.com/jwebster45206/story-director/internal/logger"
	"github.com/jwebster45206/story-director/internal/middleware"
	"github.com/jwebster45206/story-director/internal/services/events"
	"github.com/jwebster45206/story-director/internal/services/queue"
	"github.com/jwebster45206/story-director/internal/storage"
	"github.com/jwebster45206/story-director/pkg/director"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Story Director API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir)

	scorer, err := cfg.Casting.Scorer()
	if err != nil {
		log.Error("Invalid casting configuration", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, scorer.Bands, log)
	if err != nil {
		log.Error("Failed to configure storage", "error", err)
		os.Exit(1)
	}

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	ids, err := store.ListStorylets(storageCtx)
	if err != nil {
		log.Error("Failed to load storylets", "error", err)
		os.Exit(1)
	}
	log.Info("Storage ready", "storylets", len(ids))

	queueClient, err := queue.NewClient(storageCtx, cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to connect queue client", "error", err)
		os.Exit(1)
	}
	resolvedQueue := queue.NewResolvedEventQueue(queueClient, log)
	broadcaster := events.NewBroadcaster(store.Client(), log)

	dir := director.New(store, log,
		director.WithScorer(scorer),
		director.WithPublisher(queue.NewDirectorPublisher(resolvedQueue, log)),
		director.WithPublisher(broadcaster),
	)

	mux := handlers.NewMux(handlers.Routes{
		Storage:  store,
		Director: dir,
		Notifier: broadcaster,
		Logger:   log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.Logger(log, mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := queueClient.Close(); err != nil {
		log.Error("Error closing queue connection", "error", err)
	}
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
