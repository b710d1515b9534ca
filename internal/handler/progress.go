package handler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/answerlens/answerlens/internal/domain"
)

// ProgressEvent is one live pipeline update for an audit.
type ProgressEvent struct {
	AuditID   string    `json:"audit_id"`
	Stage     string    `json:"stage,omitempty"`
	Progress  int       `json:"progress"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProgressTracker keeps the latest progress per audit in memory and
// fans updates out to SSE subscribers. It implements
// service.ProgressSink.
type ProgressTracker struct {
	mu     sync.RWMutex
	latest map[string]ProgressEvent
	subs   map[string][]chan ProgressEvent
}

// NewProgressTracker creates a tracker.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		latest: make(map[string]ProgressEvent),
		subs:   make(map[string][]chan ProgressEvent),
	}
}

// Progress records an update and notifies subscribers.
func (t *ProgressTracker) Progress(auditID, stage string, progress int, status string) {
	event := ProgressEvent{
		AuditID:   auditID,
		Stage:     stage,
		Progress:  progress,
		Status:    status,
		UpdatedAt: time.Now(),
	}

	// Sends stay under the lock so Unsubscribe can never close a
	// channel between the snapshot and the send. Every send is
	// non-blocking, so the critical section stays short.
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest[auditID] = event
	for _, ch := range t.subs[auditID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Latest returns the most recent event for an audit.
func (t *ProgressTracker) Latest(auditID string) (ProgressEvent, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	event, ok := t.latest[auditID]
	return event, ok
}

// Subscribe returns a channel that receives progress updates.
func (t *ProgressTracker) Subscribe(auditID string) chan ProgressEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch := make(chan ProgressEvent, 10)
	t.subs[auditID] = append(t.subs[auditID], ch)
	return ch
}

// Unsubscribe removes a channel from subscribers.
func (t *ProgressTracker) Unsubscribe(auditID string, ch chan ProgressEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	subs := t.subs[auditID]
	for i, s := range subs {
		if s == ch {
			t.subs[auditID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	close(ch)
}

// streamProgress streams audit progress via Server-Sent Events until
// the audit reaches a terminal state.
func (h *AuditHandler) streamProgress(c fiber.Ctx) error {
	id := c.Params("id")

	audit, err := h.store.GetAudit(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "audit not found"})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	// Already terminal: emit the final state once and return.
	if audit.Terminal() {
		data, _ := json.Marshal(ProgressEvent{
			AuditID:  audit.ID,
			Progress: audit.Progress,
			Status:   audit.Status,
		})
		return c.SendString(fmt.Sprintf("event: %s\ndata: %s\n\n", audit.Status, string(data)))
	}

	ch := h.tracker.Subscribe(id)

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer h.tracker.Unsubscribe(id, ch)

		initial := ProgressEvent{AuditID: audit.ID, Progress: audit.Progress, Status: audit.Status}
		if latest, ok := h.tracker.Latest(id); ok {
			initial = latest
		}
		data, _ := json.Marshal(initial)
		fmt.Fprintf(w, "event: progress\ndata: %s\n\n", string(data))
		w.Flush()

		timeout := time.After(15 * time.Minute)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				data, _ := json.Marshal(event)
				eventType := "progress"
				if event.Status == domain.AuditStatusCompleted || event.Status == domain.AuditStatusFailed {
					eventType = event.Status
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, string(data))
				w.Flush()

				if eventType != "progress" {
					return
				}
			case <-timeout:
				slog.Warn("SSE timeout", "audit_id", id)
				return
			}
		}
	})
}
