package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo-api/internal/advisor"
	"todo-api/internal/cache"
	"todo-api/internal/config"
	"todo-api/internal/controller"
	"todo-api/internal/database"
	"todo-api/internal/llm"
	"todo-api/internal/queue"
	"todo-api/internal/routes"
	"todo-api/internal/worker"
	"todo-api/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	// .env never overrides variables already set in the environment
	_ = godotenv.Load()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	cfg := config.Get()
	logger.SetLevel(cfg.LogLevel)

	db, err := database.Open(ctx, cfg)
	if err != nil {
		logger.Error(ctx, "Database not available; exiting", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.MigrateOrCreateSchema(ctx, db); err != nil {
		logger.Error(ctx, "Schema migration failed", "error", err)
		os.Exit(1)
	}

	// Optional: Redis list cache and Kafka change events
	todoCache := cache.New(ctx, cfg)
	defer todoCache.Close()
	queue.EnsureTopic(ctx, cfg)
	events := queue.NewProducer(ctx, cfg)
	defer events.Close()

	// Keeps the shared list cache honest when other replicas or tools write
	go worker.Run(ctx, cfg, todoCache)

	model := llm.NewClient(cfg)
	logger.Info(ctx, "Recommendation model configured", "model", model.Model(), "base_url", cfg.LLMBaseURL)

	handler := &controller.Handler{
		DB:      db,
		Cache:   todoCache,
		Events:  events,
		Advisor: advisor.New(model, llm.NewTokenizer()),
	}

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      routes.Router(handler),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: time.Duration(cfg.HTTPWriteTimeoutSec) * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		logger.Info(ctx, "HTTP server listening", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "Shutting down server")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown error", "error", err)
	}
	logger.Info(ctx, "Server stopped")
}
