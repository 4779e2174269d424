// Package main provides the entry point for the AI chat relay service.
// It initializes all dependencies, sets up HTTP routes with middleware,
// and starts the server with graceful shutdown support.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/chat"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/config"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/handlers"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/llm"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/middleware"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/ratelimit"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/session"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/pkg/logger"
)

func main() {
	// Load .env.local file only in development (when GO_ENV is not set or set to "development")
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" || goEnv == "development" {
		if err := godotenv.Load(".env.local"); err != nil {
			// Only log if the error is not "file not found"
			if !os.IsNotExist(err) {
				fmt.Fprintf(os.Stderr, "Warning: Error loading .env.local file: %v\n", err)
			}
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewWithConfig(&cfg.Logging)
	log.Info("Starting AI Chat Service")
	log.WithFields(logrus.Fields{
		"version":           handlers.ServiceVersion,
		"port":              cfg.Server.Port,
		"host":              cfg.Server.Host,
		"model":             cfg.OpenAI.Model,
		"openai_configured": cfg.IsProviderConfigured(),
	}).Info("Service configuration loaded")

	if !cfg.IsProviderConfigured() {
		log.Warn("OpenAI API key not found! Please set OPENAI_API_KEY in .env file")
	}

	// Initialize core components
	store := session.NewStore(cfg.Chat.MaxHistoryTurns, cfg.Chat.SessionMaxIdle, log)
	store.StartSweeper(cfg.Chat.SweepInterval)
	defer closeStore(store, log)

	limiter := ratelimit.New(cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow)
	provider := llm.NewOpenAIClient(&cfg.OpenAI)
	chatService := chat.NewService(cfg, store, provider, log)

	// Set up HTTP server
	server := setupServer(cfg, chatService, limiter, log)

	// Start and run server with graceful shutdown
	runServer(server, cfg, log)
}

func closeStore(store *session.Store, log *logrus.Logger) {
	if err := store.Close(); err != nil {
		log.WithError(err).Error("Failed to close session store")
	}
}

func setupServer(
	cfg *config.Config,
	chatService *chat.Service,
	limiter *ratelimit.Limiter,
	log *logrus.Logger,
) *http.Server {
	// Initialize metrics and handlers
	metrics := handlers.NewMetrics()
	metrics.Register(prometheus.DefaultRegisterer)

	chatHandler := handlers.NewChatHandler(chatService, cfg, log, metrics)
	healthHandler := handlers.NewHealthHandler(cfg, chatService, log, metrics)

	// Initialize middleware
	middlewareStack := middleware.NewStack(cfg, limiter, log)

	// Set up routes
	router := mux.NewRouter()

	router.HandleFunc("/api/health", healthHandler.Health).Methods(http.MethodGet)
	router.HandleFunc("/api/health/live", healthHandler.Liveness).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Chat API routes
	chatHandler.RegisterRoutes(router)

	// Frontend assets when the static directory exists
	registerStaticRoutes(router, cfg, log)

	// JSON bodies for unmatched routes
	router.NotFoundHandler = http.HandlerFunc(chatHandler.NotFound)

	// Apply middleware to the entire router
	finalHandler := middlewareStack.Chain(
		router,
		middlewareStack.Recovery,
		middlewareStack.RequestLogger,
		middlewareStack.SecurityHeaders,
		middlewareStack.CORS,
		middlewareStack.RateLimit,
		middlewareStack.ContentType,
	)
	finalHandler = metrics.InstrumentHTTP(finalHandler)

	// Create HTTP server
	return &http.Server{
		Addr:         cfg.ServerAddr(),
		Handler:      finalHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

// registerStaticRoutes serves the frontend single-page app from the
// configured static directory, if it exists on disk.
func registerStaticRoutes(router *mux.Router, cfg *config.Config, log *logrus.Logger) {
	info, err := os.Stat(cfg.Server.StaticDir)
	if err != nil || !info.IsDir() {
		log.WithField("static_dir", cfg.Server.StaticDir).
			Debug("Static directory not found, frontend serving disabled")
		return
	}

	fileServer := http.FileServer(http.Dir(cfg.Server.StaticDir))
	router.PathPrefix("/").Handler(fileServer).Methods(http.MethodGet)
	log.WithField("static_dir", cfg.Server.StaticDir).Info("Serving frontend assets")
}

func runServer(server *http.Server, cfg *config.Config, log *logrus.Logger) {
	// Start server in a goroutine
	go startServer(server, cfg, log)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Create context with timeout for graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Attempt graceful shutdown
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		log.WithError(shutdownErr).Error("Server forced to shutdown")
	} else {
		log.Info("Server exited gracefully")
	}
}

func startServer(server *http.Server, cfg *config.Config, log *logrus.Logger) {
	log.WithFields(logrus.Fields{
		"addr": server.Addr,
		"tls":  cfg.IsTLSEnabled(),
	}).Info("Starting HTTP server")

	var startErr error
	if cfg.IsTLSEnabled() {
		startErr = server.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
	} else {
		startErr = server.ListenAndServe()
	}

	if startErr != nil && startErr != http.ErrServerClosed {
		log.WithError(startErr).Fatal("Failed to start server")
	}
}
