package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Upstream route/schedule/permit services
	Upstream UpstreamConfig

	// CORS configuration
	CORS CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// UpstreamConfig holds the base URLs of the sibling services for both deployment modes.
type UpstreamConfig struct {
	RouteURLProduction    string
	RouteURLLocal         string
	ScheduleURLProduction string
	ScheduleURLLocal      string
	PermitURLProduction   string
	PermitURLLocal        string
	Timeout               time.Duration
}

// UpstreamURLs is the resolved set of base URLs for one deployment mode.
type UpstreamURLs struct {
	Route    string
	Schedule string
	Permit   string
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// IsProduction reports whether the service runs in production mode.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// Resolve picks the production or local base URLs. It is a pure function of the mode flag.
func (u UpstreamConfig) Resolve(production bool) UpstreamURLs {
	if production {
		return UpstreamURLs{
			Route:    u.RouteURLProduction,
			Schedule: u.ScheduleURLProduction,
			Permit:   u.PermitURLProduction,
		}
	}
	return UpstreamURLs{
		Route:    u.RouteURLLocal,
		Schedule: u.ScheduleURLLocal,
		Permit:   u.PermitURLLocal,
	}
}

// UpstreamURLs resolves the upstream base URLs for the configured environment.
func (c *Config) UpstreamURLs() UpstreamURLs {
	return c.Upstream.Resolve(c.Server.IsProduction())
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8083"),
			Environment: getEnv("ENVIRONMENT", getEnv("NODE_ENV", "development")),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", getEnv("MONGO_URI_TRIP", "")),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Upstream: UpstreamConfig{
			RouteURLProduction:    getEnv("ROUTE_SERVICE_URL_PRODUCTION", ""),
			RouteURLLocal:         getEnv("ROUTE_SERVICE_URL_LOCAL", ""),
			ScheduleURLProduction: getEnv("SCHEDULE_SERVICE_URL_PRODUCTION", ""),
			ScheduleURLLocal:      getEnv("SCHEDULE_SERVICE_URL_LOCAL", ""),
			PermitURLProduction:   getEnv("PERMIT_SERVICE_URL_PRODUCTION", ""),
			PermitURLLocal:        getEnv("PERMIT_SERVICE_URL_LOCAL", ""),
			Timeout:               time.Duration(getEnvAsInt("UPSTREAM_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	mode := "LOCAL"
	if c.Server.IsProduction() {
		mode = "PRODUCTION"
	}

	urls := c.UpstreamURLs()
	if urls.Route == "" {
		return fmt.Errorf("ROUTE_SERVICE_URL_%s is required", mode)
	}
	if urls.Schedule == "" {
		return fmt.Errorf("SCHEDULE_SERVICE_URL_%s is required", mode)
	}
	if urls.Permit == "" {
		return fmt.Errorf("PERMIT_SERVICE_URL_%s is required", mode)
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
