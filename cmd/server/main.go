package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/answerlens/answerlens/internal/adapter/ai"
	"github.com/answerlens/answerlens/internal/adapter/fetch"
	"github.com/answerlens/answerlens/internal/adapter/search"
	"github.com/answerlens/answerlens/internal/adapter/store"
	"github.com/answerlens/answerlens/internal/crawler"
	"github.com/answerlens/answerlens/internal/handler"
	"github.com/answerlens/answerlens/internal/middleware"
	"github.com/answerlens/answerlens/internal/port"
	"github.com/answerlens/answerlens/internal/service"
	"github.com/answerlens/answerlens/pkg/config"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🔍 Starting AnswerLens",
		"port", cfg.Port,
		"ollama", cfg.OllamaURL,
		"search", cfg.SearchURL,
		"database", cfg.DatabaseURL != "",
	)

	// ── Storage ──────────────────────────────────────────────────────────
	var (
		auditStore port.AuditStore
		logWriter  middleware.RequestLogWriter
	)
	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pgStore.Close()
		auditStore = pgStore
		logWriter = pgStore
	} else {
		slog.Warn("DATABASE_URL not set, using in-memory store")
		memStore := store.NewMemoryStore()
		auditStore = memStore
		logWriter = memStore
	}

	// ── Adapters ─────────────────────────────────────────────────────────
	fetcher := fetch.New(fetch.Options{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout,
		HostRPS:   cfg.HostRPS,
	})

	searcher := search.New(cfg.SearchURL, cfg.SearchKey, cfg.StageTimeout)

	reasoner := ai.NewOllamaReasoner(ai.OllamaEndpointConfig{
		BaseURL: cfg.OllamaURL,
		Model:   cfg.OllamaModel,
		Token:   cfg.OllamaToken,
	}, cfg.StageTimeout)

	// ── Pipeline ─────────────────────────────────────────────────────────
	tracker := handler.NewProgressTracker()

	orchestrator := service.NewOrchestrator(auditStore, fetcher, searcher, reasoner, tracker, service.Options{
		Crawl: crawler.Options{
			MaxPages:    cfg.MaxPages,
			MaxDepth:    cfg.MaxDepth,
			Concurrency: cfg.CrawlConcurrency,
		},
		MaxCompetitors:  cfg.MaxCompetitors,
		ResultsPerQuery: cfg.ResultsPerQuery,
		CompetitorPages: cfg.CompetitorPages,
		StageTimeout:    cfg.StageTimeout,
	})

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
	}))
	app.Use(middleware.RequestLog(logWriter))

	// Health check
	app.Get("/api/v1/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"version": "1.0.0",
		})
	})

	// ── Routes ───────────────────────────────────────────────────────────
	api := app.Group("/api/v1")

	auditHandler := handler.NewAuditHandler(orchestrator, auditStore, tracker, cfg.AuditTimeout)
	auditHandler.Register(api)

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
