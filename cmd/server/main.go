package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/trip-service/internal/config"
	"github.com/smarttransit/trip-service/internal/database"
	"github.com/smarttransit/trip-service/internal/handlers"
	"github.com/smarttransit/trip-service/internal/metrics"
	"github.com/smarttransit/trip-service/internal/middleware"
	"github.com/smarttransit/trip-service/internal/services"
	"github.com/smarttransit/trip-service/pkg/upstream"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Trip Service")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if err := database.EnsureSchema(db); err != nil {
		logger.Fatalf("Failed to prepare schema: %v", err)
	}

	// Upstream services
	urls := cfg.UpstreamURLs()
	logger.WithFields(logrus.Fields{
		"environment":  cfg.Server.Environment,
		"route_url":    urls.Route,
		"schedule_url": urls.Schedule,
		"permit_url":   urls.Permit,
	}).Info("Resolved upstream services")

	upstreamClient := upstream.NewClient(upstream.Config{
		RouteURL:    urls.Route,
		ScheduleURL: urls.Schedule,
		PermitURL:   urls.Permit,
		Timeout:     cfg.Upstream.Timeout,
		Logger:      logger,
		Observer:    metrics.ObserveUpstream,
	})

	// Initialize repositories and services
	tripRepository := database.NewTripRepository(db)
	tripService := services.NewTripService(tripRepository, upstreamClient, logger)
	tripHandler := handlers.NewTripHandler(tripService, logger)

	// Setup Gin router
	router := gin.New()
	router.Use(middleware.Stack(logger)...)

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", handlers.HealthCheck(db, logger, version))
	router.GET("/metrics", metrics.Handler())

	handlers.RegisterRoutes(router, tripHandler)

	// Create HTTP server. Trip creation waits on the upstream lookups, so writes
	// get the upstream timeout on top of the usual budget.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Upstream.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}
