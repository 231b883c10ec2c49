package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"shiritori/internal/config"
	"shiritori/internal/database"
	"shiritori/internal/game"
	"shiritori/internal/handlers"
	"shiritori/internal/models"
	"shiritori/internal/oracle"
	"shiritori/internal/repository"
	"shiritori/internal/security"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories and services
	scoreRepo := repository.NewScoreRepository(db)

	oracleService := oracle.NewService(cfg.GeminiAPIKey, cfg.GeminiModel)
	if oracleService.AIEnabled() {
		log.Printf("Word oracle: Gemini (%s) with offline fallback", cfg.GeminiModel)
	} else {
		log.Println("Word oracle: offline word lists only (no GEMINI_API_KEY)")
	}

	// Finished rounds save their score through the repository; a failed
	// save is logged inside the session, never fatal
	manager := game.NewManager(func(score *models.GameScore) error {
		_, err := scoreRepo.Save(score)
		return err
	}, cfg.SessionIdleTimeout)

	sweepDone := make(chan struct{})
	manager.StartSweeper(5*time.Minute, sweepDone)

	oracleLimiter := security.NewRateLimiter(cfg.OracleRateLimit, cfg.OracleRateWindow)

	// Initialize handlers
	scoreHandler := handlers.NewScoreHandler(scoreRepo, cfg.ClearPasscodeHash)
	aiHandler := handlers.NewAIHandler(oracleService)
	gameHandler := handlers.NewGameHandler(manager, oracleService, cfg.SessionSecret, cfg.SessionIdleTimeout)
	healthHandler := handlers.NewHealthHandler(db, manager, oracleService)

	// Setup routes
	mux := http.NewServeMux()

	// Static files (the game client)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticFilesPath))))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(cfg.StaticFilesPath, "index.html"))
	})

	// Score persistence
	mux.HandleFunc("POST /save-score", scoreHandler.SaveScore)
	mux.HandleFunc("GET /get-scores/{type}", scoreHandler.GetScores)
	mux.HandleFunc("POST /clear-scores/{type}", scoreHandler.ClearScores)

	// Word oracle, rate limited per client IP
	mux.HandleFunc("GET /get-random-topic", handlers.RateLimit(oracleLimiter, aiHandler.GetRandomTopic))
	mux.HandleFunc("POST /get-ai-word", handlers.RateLimit(oracleLimiter, aiHandler.GetAIWord))
	mux.HandleFunc("POST /validate-word", handlers.RateLimit(oracleLimiter, aiHandler.ValidateWord))

	// Server-driven game sessions
	mux.HandleFunc("POST /game/number/start", gameHandler.StartNumber)
	mux.HandleFunc("POST /game/number/answer", gameHandler.SubmitNumber)
	mux.HandleFunc("POST /game/word/start", handlers.RateLimit(oracleLimiter, gameHandler.StartWord))
	mux.HandleFunc("POST /game/word/submit", handlers.RateLimit(oracleLimiter, gameHandler.SubmitWord))
	mux.HandleFunc("POST /game/word/arrange", gameHandler.SubmitArrangement)
	mux.HandleFunc("GET /game/state", gameHandler.State)
	mux.HandleFunc("POST /game/quit", gameHandler.Quit)
	mux.HandleFunc("POST /game/menu", gameHandler.Menu)

	mux.HandleFunc("GET /health", healthHandler.Health)

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	close(sweepDone)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
