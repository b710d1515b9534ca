package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/answerlens/answerlens/internal/port"
	"github.com/answerlens/answerlens/internal/service"
)

// AuditHandler exposes the audit pipeline over HTTP.
type AuditHandler struct {
	orchestrator *service.Orchestrator
	store        port.AuditStore
	tracker      *ProgressTracker
	runTimeout   time.Duration
}

// NewAuditHandler creates an audit handler.
func NewAuditHandler(orchestrator *service.Orchestrator, store port.AuditStore, tracker *ProgressTracker, runTimeout time.Duration) *AuditHandler {
	if runTimeout == 0 {
		runTimeout = 10 * time.Minute
	}
	return &AuditHandler{
		orchestrator: orchestrator,
		store:        store,
		tracker:      tracker,
		runTimeout:   runTimeout,
	}
}

// Register sets up audit routes.
func (h *AuditHandler) Register(router fiber.Router) {
	audits := router.Group("/audits")
	audits.Post("/", h.create)
	audits.Get("/", h.list)
	audits.Get("/:id", h.get)
	audits.Get("/:id/results", h.results)
	audits.Get("/:id/stream", h.streamProgress)
}

// create accepts an audit request and returns 202 immediately; the
// pipeline runs in the background with its own bounded context.
func (h *AuditHandler) create(c fiber.Ctx) error {
	var body struct {
		URL string `json:"url"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	audit, err := h.orchestrator.Create(c.Context(), body.URL)
	if err != nil {
		if errors.Is(err, port.ErrInvalidSeedURL) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.runTimeout)
		defer cancel()
		h.orchestrator.Run(ctx, audit.ID)
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"audit":   audit,
		"message": "audit started",
	})
}

// get returns the audit record with its lifecycle status and progress.
func (h *AuditHandler) get(c fiber.Ctx) error {
	audit, err := h.store.GetAudit(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, port.ErrAuditNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "audit not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(audit)
}

// results returns the full consumer-facing contract of an audit.
func (h *AuditHandler) results(c fiber.Ctx) error {
	results, err := h.store.GetAuditResults(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, port.ErrAuditNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "audit not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(results)
}

// list returns recent audits.
func (h *AuditHandler) list(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	audits, err := h.store.ListAudits(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"audits": audits, "count": len(audits)})
}
