package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ahcc-digital/oncoscreen/internal/api"
	"github.com/ahcc-digital/oncoscreen/internal/config"
	"github.com/ahcc-digital/oncoscreen/internal/core"
	"github.com/ahcc-digital/oncoscreen/internal/export"
	"github.com/ahcc-digital/oncoscreen/internal/limiter"
	"github.com/ahcc-digital/oncoscreen/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// Command line flag for the submission export
	exportFlag := flag.Bool("export", false, "Dump the submission log as CSV to stdout and exit")
	flag.Parse()

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	// Handle the CSV export if the flag is set
	if *exportFlag {
		subs, err := dbStore.ListSubmissions()
		if err != nil {
			log.Fatalf("Submission export failed: %v", err)
		}
		if err := export.SubmissionsCSV(os.Stdout, subs); err != nil {
			log.Fatalf("Submission export failed: %v", err)
		}
		log.Printf("Exported %d submissions. Exiting.", len(subs))
		os.Exit(0)
	}

	// Initialize the rate limiter. Redis keeps the counters across
	// restarts; the in-memory limiter is the single-instance fallback.
	lockFor := time.Duration(config.AppConfig.LockHours) * time.Hour
	var lim limiter.Limiter
	if addr := config.AppConfig.RedisAddr; addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis at %s: %v", addr, err)
		}
		lim = limiter.NewRedisLimiter(client, config.AppConfig.MaxAttempts, lockFor)
		log.Printf("Using Redis rate limiter at %s", addr)
	} else {
		lim = limiter.NewMemoryLimiter(config.AppConfig.MaxAttempts, lockFor)
		log.Println("REDIS_ADDR not set, using in-memory rate limiter")
	}

	// Initialize LLM service
	llmService := core.NewLLMService()
	defer llmService.Close()

	// Initialize domain services
	analysisService := core.NewAnalysisService(llmService)
	screeningService := core.NewScreeningService(dbStore, analysisService, lim)
	chatService := core.NewChatService(dbStore, llmService, lim, config.AppConfig.MaxChatTurns)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(screeningService, chatService, dbStore)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
