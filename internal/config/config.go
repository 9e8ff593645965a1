package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Supabase
	SupabaseURL           string
	SupabaseAnonKey       string
	SupabaseJWTSecret     string
	SupabaseStorageBucket string

	// Serverless compression function
	CompressFunctionURL string

	// Geocoding
	GeocodingBaseURL string
	GeocodingToken   string

	// Database
	DatabaseURL string

	// Upload pipeline
	MaxImagesPerListing  int
	MaxUploadSizeMB      int
	UploadConcurrency    int
	RejectBatchOnInvalid bool

	// Rate limiting
	RateLimitPerMinute int

	// Logging
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	// Server
	Port        string
	Environment string
	CORSOrigins string
}

func Load() (*Config, error) {
	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	cfg := &Config{
		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:       getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseJWTSecret:     getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "property-images"),

		CompressFunctionURL: getEnv("COMPRESS_FUNCTION_URL", ""),

		GeocodingBaseURL: getEnv("GEOCODING_BASE_URL", "https://api.mapbox.com"),
		GeocodingToken:   getEnv("GEOCODING_TOKEN", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		MaxImagesPerListing:  getEnvInt("MAX_IMAGES_PER_LISTING", 5),
		MaxUploadSizeMB:      getEnvInt("MAX_UPLOAD_SIZE_MB", 5),
		UploadConcurrency:    getEnvInt("UPLOAD_CONCURRENCY", 1),
		RejectBatchOnInvalid: getEnvBool("REJECT_BATCH_ON_INVALID", true),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPath:       getEnv("LOG_PATH", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 7),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseAnonKey == "" {
		return fmt.Errorf("SUPABASE_ANON_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.MaxImagesPerListing < 1 {
		return fmt.Errorf("MAX_IMAGES_PER_LISTING must be at least 1")
	}
	if c.UploadConcurrency < 1 || c.UploadConcurrency > 3 {
		return fmt.Errorf("UPLOAD_CONCURRENCY must be between 1 and 3")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
