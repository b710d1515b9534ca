package port

import (
	"context"

	"github.com/answerlens/answerlens/internal/domain"
)

// AuditStore is the persistence boundary of the pipeline. Only the
// orchestrator writes through it: each stage's output is persisted
// after the stage completes, never per item.
type AuditStore interface {
	CreateAudit(ctx context.Context, a *domain.Audit) (*domain.Audit, error)
	GetAudit(ctx context.Context, id string) (*domain.Audit, error)
	ListAudits(ctx context.Context, limit int) ([]domain.Audit, error)

	// UpdateAuditStatus records a lifecycle transition together with
	// the current progress value and, for failures, the error message.
	UpdateAuditStatus(ctx context.Context, id, status string, progress int, errMsg string) error

	// UpdateClassification records the classifier stage output.
	UpdateClassification(ctx context.Context, id string, sensitive bool, category string) error

	SaveCrawledURLs(ctx context.Context, auditID string, urls []domain.CrawledURL) error
	SavePageAudits(ctx context.Context, auditID string, pages []domain.PageAudit) error
	SaveCompetitors(ctx context.Context, auditID string, comps []domain.Competitor) error
	SaveComparativeResults(ctx context.Context, auditID string, rows []domain.ComparativeResult) error
	SaveFixPlan(ctx context.Context, auditID string, items []domain.FixPlanItem) error
	SaveReport(ctx context.Context, report *domain.Report) error

	// GetAuditResults assembles the consumer-facing contract for one audit.
	GetAuditResults(ctx context.Context, id string) (*domain.AuditResults, error)
}
