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

	"go.uber.org/zap"

	"lingua-backend/internal/config"
	"lingua-backend/internal/database"
	"lingua-backend/internal/handlers"
	"lingua-backend/internal/repository"
	"lingua-backend/internal/router"
	"lingua-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting Lingua Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	var logger *zap.Logger
	var err error
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("✗ Logger initialization failed: %v", err)
	}
	defer logger.Sync()

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis ────
	rdb, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer rdb.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	deckRepo := repository.NewDeckRepo(pool)
	wordRepo := repository.NewWordRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)
	settingsRepo := repository.NewSettingsRepo(pool)

	// ──── Step 5: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(
		cfg.GeminiAPIKey,
		cfg.GeminiConcurrentReqs,
		cfg.GeminiMaxOutputToks,
		logger,
	)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	log.Println("✓ Gemini Flash client initialized")

	extractor := services.NewTextExtractor()

	// ──── Initialize Handlers ────
	deckHandler := handlers.NewDeckHandler(deckRepo, geminiService, logger)
	wordHandler := handlers.NewWordHandler(wordRepo, logger)
	practiceHandler := handlers.NewPracticeHandler(sessionRepo, settingsRepo, deckRepo, deckRepo, wordRepo, geminiService, logger)
	settingsHandler := handlers.NewSettingsHandler(settingsRepo, logger)
	contentHandler := handlers.NewContentHandler(extractor, logger)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(
		deckHandler,
		wordHandler,
		practiceHandler,
		settingsHandler,
		contentHandler,
		rdb,
		cfg.AIRequestsPerMin,
		cfg.AllowedOrigins,
		logger,
	)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// Generation calls block on the model, so the write window is wide.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Lingua Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
