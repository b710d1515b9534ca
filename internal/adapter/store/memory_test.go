package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/answerlens/answerlens/internal/domain"
	"github.com/answerlens/answerlens/internal/port"
)

func newAudit(id string) *domain.Audit {
	return &domain.Audit{
		ID:        id,
		TargetURL: "https://acme.com/",
		Domain:    "acme.com",
		Status:    domain.AuditStatusPending,
		Category:  domain.CategoryUnknown,
		CreatedAt: time.Now(),
	}
}

func TestMemoryStoreLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.CreateAudit(ctx, newAudit("a1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "a1" || created.Status != domain.AuditStatusPending {
		t.Errorf("created = %+v", created)
	}

	if err := s.UpdateAuditStatus(ctx, "a1", domain.AuditStatusRunning, 10, ""); err != nil {
		t.Fatalf("running transition: %v", err)
	}
	got, _ := s.GetAudit(ctx, "a1")
	if got.Status != domain.AuditStatusRunning || got.Progress != 10 || got.StartedAt == nil {
		t.Errorf("after running: %+v", got)
	}

	if err := s.UpdateAuditStatus(ctx, "a1", domain.AuditStatusCompleted, 100, ""); err != nil {
		t.Fatalf("completed transition: %v", err)
	}
	got, _ = s.GetAudit(ctx, "a1")
	if !got.Terminal() || got.CompletedAt == nil {
		t.Errorf("after completed: %+v", got)
	}
}

func TestMemoryStoreTerminalImmutable(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, _ = s.CreateAudit(ctx, newAudit("a1"))
	_ = s.UpdateAuditStatus(ctx, "a1", domain.AuditStatusFailed, 30, "crawl: boom")

	if err := s.UpdateAuditStatus(ctx, "a1", domain.AuditStatusRunning, 50, ""); !errors.Is(err, port.ErrAuditTerminal) {
		t.Fatalf("want ErrAuditTerminal, got %v", err)
	}
	if err := s.UpdateClassification(ctx, "a1", true, "x"); !errors.Is(err, port.ErrAuditTerminal) {
		t.Fatalf("want ErrAuditTerminal, got %v", err)
	}

	got, _ := s.GetAudit(ctx, "a1")
	if got.Status != domain.AuditStatusFailed || got.Progress != 30 || got.ErrorMessage != "crawl: boom" {
		t.Errorf("terminal audit mutated: %+v", got)
	}
}

func TestMemoryStoreMonotoneProgress(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, _ = s.CreateAudit(ctx, newAudit("a1"))

	_ = s.UpdateAuditStatus(ctx, "a1", domain.AuditStatusRunning, 60, "")
	_ = s.UpdateAuditStatus(ctx, "a1", domain.AuditStatusRunning, 45, "")

	got, _ := s.GetAudit(ctx, "a1")
	if got.Progress != 60 {
		t.Errorf("progress regressed to %d, want 60", got.Progress)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.GetAudit(ctx, "missing"); !errors.Is(err, port.ErrAuditNotFound) {
		t.Errorf("get: want ErrAuditNotFound, got %v", err)
	}
	if err := s.UpdateAuditStatus(ctx, "missing", domain.AuditStatusRunning, 10, ""); !errors.Is(err, port.ErrAuditNotFound) {
		t.Errorf("update: want ErrAuditNotFound, got %v", err)
	}
	if _, err := s.GetAuditResults(ctx, "missing"); !errors.Is(err, port.ErrAuditNotFound) {
		t.Errorf("results: want ErrAuditNotFound, got %v", err)
	}
}

func TestMemoryStoreResultsAssembly(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, _ = s.CreateAudit(ctx, newAudit("a1"))

	pages := []domain.PageAudit{{ID: "p1", AuditID: "a1", Entity: domain.EntityTarget, URL: "https://acme.com/"}}
	if err := s.SavePageAudits(ctx, "a1", pages); err != nil {
		t.Fatal(err)
	}
	comps := []domain.Competitor{{AuditID: "a1", Domain: "rival.com", URL: "https://rival.com/", Rank: 1}}
	if err := s.SaveCompetitors(ctx, "a1", comps); err != nil {
		t.Fatal(err)
	}
	rows := []domain.ComparativeResult{{AuditID: "a1", Entity: domain.EntityTarget, IsTarget: true, Rank: 1}}
	if err := s.SaveComparativeResults(ctx, "a1", rows); err != nil {
		t.Fatal(err)
	}
	plan := []domain.FixPlanItem{{AuditID: "a1", Title: "Add structured data"}}
	if err := s.SaveFixPlan(ctx, "a1", plan); err != nil {
		t.Fatal(err)
	}

	// Results are queryable before the report exists.
	results, err := s.GetAuditResults(ctx, "a1")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if results.Report != nil {
		t.Error("report should be absent until saved")
	}
	if len(results.Pages) != 1 || len(results.Competitors) != 1 || len(results.Ranking) != 1 || len(results.FixPlan) != 1 {
		t.Errorf("assembled results wrong: %+v", results)
	}

	if err := s.SaveReport(ctx, &domain.Report{AuditID: "a1", Narrative: "# R", CreatedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	results, _ = s.GetAuditResults(ctx, "a1")
	if results.Report == nil || results.Report.Narrative != "# R" {
		t.Errorf("report missing after save: %+v", results.Report)
	}
}

func TestMemoryStoreListAudits(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	early := newAudit("a1")
	early.CreatedAt = time.Now().Add(-time.Hour)
	late := newAudit("a2")
	_, _ = s.CreateAudit(ctx, early)
	_, _ = s.CreateAudit(ctx, late)

	audits, err := s.ListAudits(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(audits) != 2 || audits[0].ID != "a2" {
		t.Errorf("newest first expected: %+v", audits)
	}

	limited, _ := s.ListAudits(ctx, 1)
	if len(limited) != 1 {
		t.Errorf("limit not applied: %d", len(limited))
	}
}
