package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Server
	Port    string
	AppName string

	// Database (empty = in-memory store)
	DatabaseURL string

	// Ollama reasoning endpoint
	OllamaURL   string
	OllamaModel string
	OllamaToken string // Bearer token for Ollama Cloud (empty = local)

	// Search index
	SearchURL string
	SearchKey string

	// Crawler
	UserAgent        string
	MaxPages         int
	MaxDepth         int
	CrawlConcurrency int
	FetchTimeout     time.Duration
	HostRPS          float64

	// Competitor discovery
	MaxCompetitors  int
	ResultsPerQuery int
	CompetitorPages int

	// Pipeline
	AuditTimeout time.Duration
	StageTimeout time.Duration

	// Frontend
	FrontendURL string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envOrDefault("PORT", "3001"),
		AppName: envOrDefault("APP_NAME", "AnswerLens"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		OllamaURL:   envOrDefault("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel: envOrDefault("OLLAMA_MODEL", "qwen3"),
		OllamaToken: os.Getenv("OLLAMA_TOKEN"),

		SearchURL: envOrDefault("SEARCH_URL", "http://localhost:8888"),
		SearchKey: os.Getenv("SEARCH_KEY"),

		UserAgent:        envOrDefault("CRAWLER_USER_AGENT", "answerlens/1.0 (+https://answerlens.dev/bot)"),
		MaxPages:         envOrDefaultInt("CRAWL_MAX_PAGES", 25),
		MaxDepth:         envOrDefaultInt("CRAWL_MAX_DEPTH", 3),
		CrawlConcurrency: envOrDefaultInt("CRAWL_CONCURRENCY", 4),
		FetchTimeout:     envOrDefaultDuration("FETCH_TIMEOUT", 15*time.Second),
		HostRPS:          envOrDefaultFloat("CRAWL_HOST_RPS", 2),

		MaxCompetitors:  envOrDefaultInt("MAX_COMPETITORS", 4),
		ResultsPerQuery: envOrDefaultInt("SEARCH_RESULTS_PER_QUERY", 8),
		CompetitorPages: envOrDefaultInt("COMPETITOR_PAGES", 3),

		AuditTimeout: envOrDefaultDuration("AUDIT_TIMEOUT", 10*time.Minute),
		StageTimeout: envOrDefaultDuration("STAGE_TIMEOUT", 90*time.Second),

		FrontendURL: envOrDefault("FRONTEND_URL", "http://localhost:3000"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return fallback
}
