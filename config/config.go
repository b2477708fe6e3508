package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Report and media configuration
	FontPath  string
	MediaRoot string
	MediaURL  string

	// Comma separated list of allowed CORS origins
	AllowedOrigins []string

	LogLevel string
}

const (
	defaultFontPath  = "assets/fonts/DejaVuSans.ttf"
	defaultMediaRoot = "media"
	defaultMediaURL  = "/media"
)

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	switch env {
	case CI:
		loadEnvConfig(cfg)
	case Development, Test:
		// A missing .env file is fine, the process environment wins anyway.
		_ = godotenv.Load()
		loadEnvConfig(cfg)
	case Production:
		loadProdConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	applyDefaults(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadEnvConfig reads everything from plain environment variables
func loadEnvConfig(cfg *Config) {
	cfg.ServerPort = os.Getenv("SERVER_PORT")
	cfg.ServerHost = os.Getenv("SERVER_HOST")
	cfg.DBDriver = os.Getenv("DB_DRIVER")
	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = os.Getenv("DB_PORT")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = os.Getenv("DB_SSL_MODE")
	cfg.SQLitePath = os.Getenv("SQLITE_PATH")
	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = os.Getenv("REDIS_PORT")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.RedisDB = envInt("REDIS_DB", 0)
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.FontPath = os.Getenv("FONT_PATH")
	cfg.MediaRoot = os.Getenv("MEDIA_ROOT")
	cfg.MediaURL = os.Getenv("MEDIA_URL")
	cfg.AllowedOrigins = splitList(os.Getenv("ALLOWED_ORIGINS"))
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
}

// loadProdConfig loads non-sensitive values from the environment and
// credentials from Docker secrets
func loadProdConfig(cfg *Config) {
	loadEnvConfig(cfg)

	cfg.DBUser = readSecret("db_user", cfg.DBUser)
	cfg.DBPassword = readSecret("db_password", cfg.DBPassword)
	cfg.RedisPassword = readSecret("redis_password", cfg.RedisPassword)
	cfg.JWTSecret = readSecret("jwt_secret", cfg.JWTSecret)
}

func applyDefaults(cfg *Config) {
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = "postgres"
	}
	if cfg.DBSSLMode == "" {
		cfg.DBSSLMode = "disable"
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "foodgram.db"
	}
	if cfg.FontPath == "" {
		cfg.FontPath = defaultFontPath
	}
	if cfg.MediaRoot == "" {
		cfg.MediaRoot = defaultMediaRoot
	}
	if cfg.MediaURL == "" {
		cfg.MediaURL = defaultMediaURL
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// readSecret reads a Docker secret from the secrets directory, falling back
// to the given value when the secret file does not exist
func readSecret(name, fallback string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	data, err := os.ReadFile(filepath.Join(secretsDir, name))
	if err != nil {
		return fallback
	}
	return strings.TrimSpace(string(data))
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
