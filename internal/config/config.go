package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// Google OAuth configuration
	GoogleOAuth GoogleOAuthConfig

	// CORS configuration
	CORS CORSConfig

	Log      LogConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Provider ProviderConfig
	Workers  WorkersConfig

	// DefaultFromEmail is used when the stored e-mail configuration has no sender.
	DefaultFromEmail string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	BaseURL         string
	Timezone        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxConns     int32
	MinConns     int32
	MaxLifetime  time.Duration
	ConnTimeout  time.Duration
	QueryTimeout time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
	ResetTokenTTL  time.Duration
}

// GoogleOAuthConfig holds Google OAuth configuration
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	FrontendURL  string
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
}

// LogConfig selects the logrus level and formatter
type LogConfig struct {
	Level  string
	Format string // text | json
}

// StorageConfig selects where attachments and photos are written
type StorageConfig struct {
	Provider  string // local | gcs
	LocalRoot string
	GCSBucket string
}

// RedisConfig is optional; an empty Addr disables the reminder lock
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ProviderConfig holds base URLs of the third-party APIs the adapters call.
// API keys are not here: they are rows in api_configurations.
type ProviderConfig struct {
	QuoteBaseURL   string
	GeocodeBaseURL string
	WeatherBaseURL string
	LLMBaseURL     string
	LLMModel       string
	HTTPTimeout    time.Duration
	LLMTimeout     time.Duration
}

// WorkersConfig controls the in-process background loops (0 disables a loop)
type WorkersConfig struct {
	EnrichmentInterval time.Duration
	EnrichmentHorizon  time.Duration
	EnrichmentBatch    int
	ReminderInterval   time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file
	if err := godotenv.Load("../.env"); err != nil {
		// Try loading from current directory if not found in parent
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("Warning: .env file not found: %v", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			BaseURL:         strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
			Timezone:        getEnv("APP_TIMEZONE", "America/Sao_Paulo"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
			MaxUploadBytes:  int64(getIntEnv("MAX_UPLOAD_BYTES", 10<<20)),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Name:         getEnv("DB_NAME", "postgres"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxConns:     getInt32Env("DB_MAX_CONNS", 5),
			MinConns:     getInt32Env("DB_MIN_CONNS", 0),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", time.Hour),
			ConnTimeout:  getDurationEnv("DB_CONN_TIMEOUT", 10*time.Second),
			QueryTimeout: getDurationEnv("DB_QUERY_TIMEOUT", 30*time.Second),
		},
		JWT: JWTConfig{
			Secret:         getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL: getDurationEnv("JWT_ACCESS_TTL", 7*24*time.Hour), // 7 days
			ResetTokenTTL:  getDurationEnv("JWT_RESET_TTL", 10*time.Minute),  // 10 minutes
		},
		GoogleOAuth: GoogleOAuthConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
			FrontendURL:  getEnv("GOOGLE_FRONTEND_CALLBACK_URL", "http://localhost:8081/callback"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getStringSliceEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods:   getStringSliceEnv("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getStringSliceEnv("CORS_ALLOWED_HEADERS", []string{"*"}),
			AllowCredentials: getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Storage: StorageConfig{
			Provider:  strings.ToLower(getEnv("STORAGE_PROVIDER", "local")),
			LocalRoot: getEnv("MEDIA_ROOT", "./media"),
			GCSBucket: getEnv("GCS_BUCKET", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Provider: ProviderConfig{
			QuoteBaseURL:   getEnv("QUOTE_API_BASE_URL", "https://economia.awesomeapi.com.br"),
			GeocodeBaseURL: getEnv("GEOCODE_API_BASE_URL", "https://maps.googleapis.com/maps/api"),
			WeatherBaseURL: getEnv("WEATHER_API_BASE_URL", "http://api.weatherapi.com/v1"),
			LLMBaseURL:     getEnv("LLM_API_BASE_URL", "https://api.openai.com/v1"),
			LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
			HTTPTimeout:    getDurationEnv("PROVIDER_HTTP_TIMEOUT", 5*time.Second),
			LLMTimeout:     getDurationEnv("LLM_HTTP_TIMEOUT", 30*time.Second),
		},
		Workers: WorkersConfig{
			EnrichmentInterval: getDurationEnv("ENRICHMENT_INTERVAL", 15*time.Minute),
			EnrichmentHorizon:  getDurationEnv("ENRICHMENT_HORIZON", 14*24*time.Hour),
			EnrichmentBatch:    getIntEnv("ENRICHMENT_BATCH", 20),
			ReminderInterval:   getDurationEnv("REMINDER_INTERVAL", 0),
		},
		DefaultFromEmail: getEnv("DEFAULT_FROM_EMAIL", "no-reply@localhost"),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Check required database configuration
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}

	switch c.Storage.Provider {
	case "local":
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required when STORAGE_PROVIDER=gcs")
		}
	default:
		return fmt.Errorf("unknown STORAGE_PROVIDER %q", c.Storage.Provider)
	}

	if c.JWT.Secret == "your-secret-key-change-in-production" {
		log.Println("Warning: JWT_SECRET is the development default.")
	}

	// Check required Google OAuth configuration
	if !c.IsGoogleOAuthConfigured() {
		log.Println("Warning: Google OAuth credentials not configured. Google login will not work.")
	}

	if c.Redis.Addr == "" {
		log.Println("Warning: REDIS_ADDR not configured. Reminder runs will not be serialized across processes.")
	}

	return nil
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&connect_timeout=%d",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
		int(c.Database.ConnTimeout.Seconds()),
	)
}

// IsGoogleOAuthConfigured checks if Google OAuth is properly configured
func (c *Config) IsGoogleOAuthConfigured() bool {
	return c.GoogleOAuth.ClientID != "" && c.GoogleOAuth.ClientSecret != ""
}

// Location returns the configured application timezone, UTC if it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		log.Printf("Warning: unknown APP_TIMEZONE %q, using UTC", c.Server.Timezone)
		return time.UTC
	}
	return loc
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getInt32Env(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intValue)
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := []string{}
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}
