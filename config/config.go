package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultServerHost     = "0.0.0.0"
	DefaultServerPort     = "8080"
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultGeminiURL      = "https://generativelanguage.googleapis.com"
	DefaultRatePerMinute  = 30
	DefaultAllowedOrigins = "http://localhost:5173"
)

// Config holds all configuration for the proxy
type Config struct {
	Environment Environment

	// Server configuration
	ServerHost string
	ServerPort string

	// Shared password checked by the Basic auth middleware. May be a bcrypt hash.
	BasicAuthPass string

	// Gemini configuration
	GeminiAPIKey string
	GeminiModel  string
	GeminiURL    string

	// Optional Redis for rate limiting; in-process limiting is used when empty
	RedisURL string

	RateLimitPerMinute int
	AllowedOrigins     []string
	// Proxies whose X-Forwarded-For is believed; none when empty
	TrustedProxies []string

	LogLevel  string
	LogFormat string
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// LoadConfig creates a new Config instance with values from environment variables or secrets.
// A missing shared password or Gemini key is not an error here; the proxy reports those per request.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	// .env is a development convenience; real deployments set the environment
	if env != Production {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg := &Config{
		Environment:   env,
		ServerHost:    getEnv("SERVER_HOST", DefaultServerHost),
		ServerPort:    getEnv("SERVER_PORT", DefaultServerPort),
		BasicAuthPass: envOrSecret("APP_BASIC_AUTH_PASS", "app_basic_auth_pass"),
		GeminiModel:   getEnv("GEMINI_MODEL", DefaultGeminiModel),
		GeminiURL:     strings.TrimRight(getEnv("GEMINI_API_URL", DefaultGeminiURL), "/"),
		RedisURL:      envOrSecret("REDIS_URL", "redis_url"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
	}

	apiKey, err := loadGeminiKey()
	if err != nil {
		return nil, err
	}
	cfg.GeminiAPIKey = apiKey

	cfg.RateLimitPerMinute = DefaultRatePerMinute
	if raw := os.Getenv("RATE_LIMIT_PER_MINUTE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, ValidationError{Field: "RATE_LIMIT_PER_MINUTE", Message: fmt.Sprintf("not an integer: %q", raw)}
		}
		cfg.RateLimitPerMinute = n
	}

	cfg.AllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", DefaultAllowedOrigins))
	cfg.TrustedProxies = splitList(os.Getenv("TRUSTED_PROXIES"))

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadGeminiKey reads GEMINI_API_KEY, then GEMINI_API_KEY_FILE, then the gemini_api_key secret
func loadGeminiKey() (string, error) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key, nil
	}

	if keyFile := os.Getenv("GEMINI_API_KEY_FILE"); keyFile != "" {
		data, err := os.ReadFile(keyFile)
		if err != nil {
			return "", fmt.Errorf("failed to read API key file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	return readSecret("gemini_api_key"), nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envOrSecret(key, secret string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return readSecret(secret)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
