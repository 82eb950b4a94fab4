package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"pricewatch/changedetection"
	"pricewatch/config"
	"pricewatch/database"
	"pricewatch/handlers"
	"pricewatch/middleware"
	"pricewatch/repository"
	"pricewatch/scheduler"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	if err := database.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	// Initialize change-detection client and repository
	cdClient := changedetection.NewClient(cfg.ChangeDetectionURL, cfg.ChangeDetectionAPIKey, cfg.HTTPTimeout)
	watchRepo := repository.NewWatchRepository()

	// Initialize handlers
	h := handlers.NewHandlers(watchRepo, cdClient, cfg.HistoryDepth, cfg.MaxWorkers)
	defer h.Close()

	// Initialize and start snapshot checker
	snapshotChecker := scheduler.NewSnapshotChecker(cdClient, cfg.CheckSchedule, cfg.HistoryDepth)
	snapshotChecker.Start()
	defer snapshotChecker.Stop()

	// Initialize and start retry service
	retryService := scheduler.NewRetryService(h.RefreshWatch)
	retryService.Start()
	defer retryService.Stop()

	// Setup router
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerSecond))

	// Health endpoint (no auth required)
	r.HandleFunc("/health", healthCheck).Methods("GET")

	// API v1 routes with authentication
	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.Use(middleware.APIKeyMiddleware(cfg.ServiceAPIKey))

	// Watch management
	apiV1.HandleFunc("/watches", h.AddWatch).Methods("POST")
	apiV1.HandleFunc("/watches", h.GetWatches).Methods("GET")
	apiV1.HandleFunc("/watches/{id}", h.GetWatchDetails).Methods("GET")
	apiV1.HandleFunc("/watches/{id}", h.DeleteWatch).Methods("DELETE")
	apiV1.HandleFunc("/watches/{id}/refresh", h.RefreshNow).Methods("POST")
	apiV1.HandleFunc("/watches/{id}/refresh-async", h.RefreshAsync).Methods("POST")
	apiV1.HandleFunc("/watches/{id}/history", h.GetSnapshotHistory).Methods("GET")

	// Task management
	apiV1.HandleFunc("/tasks/stats", h.GetTaskStats).Methods("GET")
	apiV1.HandleFunc("/tasks/{taskId}", h.GetTaskStatus).Methods("GET")

	// CORS configuration
	c := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	log.Printf("Server starting on %s:%s", cfg.Host, cfg.Port)
	log.Printf("Change-detection upstream: %s", cfg.ChangeDetectionURL)

	// Start server
	log.Fatal(http.ListenAndServe(cfg.Host+":"+cfg.Port, c.Handler(r)))
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"service":     "pricewatch",
		"status":      "healthy",
		"timestamp":   time.Now(),
		"api_version": "v1",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
