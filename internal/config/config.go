package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the CareerLens server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	AI       AIConfig
}

type ServerConfig struct {
	Port            int
	Env             string
	RateLimitPerMin int
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// AuthConfig verifies tokens minted by the external identity provider.
// This service never issues tokens.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// AIConfig drives provider selection. Local inference runs first when
// enabled; a cloud provider is used as primary otherwise, or as fallback
// when CloudFallback is set. Gateway credentials take precedence over a
// direct Gemini key.
type AIConfig struct {
	UseLocalOllama bool
	CloudFallback  bool
	CloudTimeout   time.Duration
	Ollama         OllamaConfig
	Gateway        GatewayConfig
	Gemini         GeminiConfig
}

type OllamaConfig struct {
	BaseURL        string
	Model          string
	Timeout        time.Duration
	NumPredict     int
	MaxResumeChars int
}

type GatewayConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            envInt("CAREERLENS_PORT", 8080),
			Env:             envString("CAREERLENS_ENV", "development"),
			RateLimitPerMin: envInt("RATE_LIMIT_PER_MIN", 60),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("AUTH_JWT_SECRET"),
			Issuer:    envString("AUTH_JWT_ISSUER", ""),
		},
		AI: AIConfig{
			UseLocalOllama: envBool("USE_LOCAL_OLLAMA", false),
			CloudFallback:  envBool("ALLOW_CLOUD_FALLBACK", false),
			CloudTimeout:   envDurationSecs("CLOUD_TIMEOUT_SECS", 60*time.Second),
			Ollama: OllamaConfig{
				BaseURL:        envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:          envString("OLLAMA_MODEL", "tinyllama"),
				Timeout:        envDurationMillis("OLLAMA_TIMEOUT_MS", 2*time.Minute),
				NumPredict:     envInt("OLLAMA_NUM_PREDICT", 500),
				MaxResumeChars: envInt("OLLAMA_MAX_RESUME_CHARS", 2000),
			},
			Gateway: GatewayConfig{
				APIKey:  os.Getenv("GATEWAY_API_KEY"),
				BaseURL: envString("GATEWAY_BASE_URL", "https://openrouter.ai/api/v1"),
				Model:   envString("GATEWAY_MODEL", "google/gemini-2.5-flash"),
			},
			Gemini: GeminiConfig{
				APIKey:  os.Getenv("GEMINI_API_KEY"),
				BaseURL: envString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
				Model:   envString("GEMINI_MODEL", "gemini-1.5-flash"),
			},
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}

	if c.AI.UseLocalOllama {
		if !strings.HasPrefix(c.AI.Ollama.BaseURL, "http://") && !strings.HasPrefix(c.AI.Ollama.BaseURL, "https://") {
			return fmt.Errorf("OLLAMA_BASE_URL must start with http:// or https://, got %q", c.AI.Ollama.BaseURL)
		}
	}

	// Provider presence is deliberately not validated here: an unconfigured
	// pipeline surfaces a configuration error per analyze request so the
	// rest of the API (history, profile, health) keeps working.
	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}

func envDurationMillis(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(ms) * time.Millisecond
}
