package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	LLM        LLMConfig
	Catalog    CatalogConfig
	DocService DocServiceConfig
	Guide      GuideConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret    string
	APIKeyHeader string
}

type LLMConfig struct {
	OpenAIKey        string
	AnthropicKey     string
	OllamaURL        string
	DefaultProvider  string
	DefaultModel     string
	VisionModel      string
	EmbeddingModel   string
	FallbackProvider string
	MaxRetries       int
	HistoryTokens    int
}

type CatalogConfig struct {
	BaseURL    string
	APIKey     string
	MaxResults int
	CacheTTL   time.Duration
}

type DocServiceConfig struct {
	BaseURL string
	APIKey  string
}

// GuideConfig controls the derived-artifact polling loop. Defaults match the
// product behavior (5s ticks, 300s batch ceiling); tests shrink them.
type GuideConfig struct {
	PollInterval time.Duration
	PollTimeout  time.Duration
	TemplateID   string
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxRetries, err := getEnvInt("LLM_MAX_RETRIES", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_RETRIES: %w", err)
	}

	historyTokens, err := getEnvInt("LLM_HISTORY_TOKENS", 2000)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_HISTORY_TOKENS: %w", err)
	}

	maxResults, err := getEnvInt("CATALOG_MAX_RESULTS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_MAX_RESULTS: %w", err)
	}

	cacheTTL, err := getEnvDuration("CATALOG_CACHE_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_CACHE_TTL: %w", err)
	}

	pollInterval, err := getEnvDuration("GUIDE_POLL_INTERVAL", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid GUIDE_POLL_INTERVAL: %w", err)
	}

	pollTimeout, err := getEnvDuration("GUIDE_POLL_TIMEOUT", 300*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid GUIDE_POLL_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET", ""),
			APIKeyHeader: getEnv("API_KEY_HEADER", "X-API-Key"),
		},
		LLM: LLMConfig{
			OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			OllamaURL:        getEnv("OLLAMA_URL", ""),
			DefaultProvider:  getEnv("LLM_DEFAULT_PROVIDER", "openai"),
			DefaultModel:     getEnv("LLM_DEFAULT_MODEL", "gpt-4o-mini"),
			VisionModel:      getEnv("LLM_VISION_MODEL", "gpt-4o"),
			EmbeddingModel:   getEnv("LLM_EMBEDDING_MODEL", "text-embedding-3-small"),
			FallbackProvider: getEnv("LLM_FALLBACK_PROVIDER", ""),
			MaxRetries:       maxRetries,
			HistoryTokens:    historyTokens,
		},
		Catalog: CatalogConfig{
			BaseURL:    getEnv("CATALOG_API_URL", ""),
			APIKey:     getEnv("CATALOG_API_KEY", ""),
			MaxResults: maxResults,
			CacheTTL:   cacheTTL,
		},
		DocService: DocServiceConfig{
			BaseURL: getEnv("DOCSERVICE_API_URL", ""),
			APIKey:  getEnv("DOCSERVICE_API_KEY", ""),
		},
		Guide: GuideConfig{
			PollInterval: pollInterval,
			PollTimeout:  pollTimeout,
			TemplateID:   getEnv("GUIDE_TEMPLATE_ID", "style-guide-v2"),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.DocService.BaseURL == "" {
		missing = append(missing, "DOCSERVICE_API_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}
