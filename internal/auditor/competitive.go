package auditor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/answerlens/answerlens/internal/crawler"
	"github.com/answerlens/answerlens/internal/domain"
)

// CompetitiveAuditor applies the page auditor to each competitor's
// representative pages via a small bounded crawl. A competitor whose
// pages cannot be fetched is skipped, never fatal.
type CompetitiveAuditor struct {
	crawler *crawler.Crawler
	auditor *PageAuditor

	MaxPages    int // pages audited per competitor
	Concurrency int // competitors audited in parallel
}

// NewCompetitiveAuditor creates a competitive auditor.
func NewCompetitiveAuditor(c *crawler.Crawler, p *PageAuditor) *CompetitiveAuditor {
	return &CompetitiveAuditor{
		crawler:     c,
		auditor:     p,
		MaxPages:    3,
		Concurrency: 2,
	}
}

// AuditAll audits every competitor concurrently and returns their page
// audits in competitor order. Competitors without a single reachable
// HTML page produce no audits.
func (ca *CompetitiveAuditor) AuditAll(ctx context.Context, auditID string, comps []domain.Competitor) []domain.PageAudit {
	perCompetitor := make([][]domain.PageAudit, len(comps))
	sem := make(chan struct{}, ca.Concurrency)
	var wg sync.WaitGroup

	for i, comp := range comps {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, comp domain.Competitor) {
			defer wg.Done()
			defer func() { <-sem }()
			perCompetitor[i] = ca.auditOne(ctx, auditID, comp)
		}(i, comp)
	}
	wg.Wait()

	var all []domain.PageAudit
	for _, audits := range perCompetitor {
		all = append(all, audits...)
	}
	return all
}

func (ca *CompetitiveAuditor) auditOne(ctx context.Context, auditID string, comp domain.Competitor) []domain.PageAudit {
	maxPages := ca.MaxPages
	if maxPages <= 0 || maxPages > 5 {
		maxPages = 5
	}

	results, err := ca.crawler.Crawl(ctx, comp.URL, crawler.Options{
		MaxPages:    maxPages,
		MaxDepth:    1,
		Concurrency: 2,
	})
	if err != nil {
		slog.Warn("competitor crawl failed", "domain", comp.Domain, "error", err)
		return nil
	}

	var audits []domain.PageAudit
	for _, r := range results {
		if !r.HTML {
			continue
		}
		scores, issues := ca.auditor.Audit(r.URL, r.Body)
		audits = append(audits, domain.PageAudit{
			ID:        uuid.New().String(),
			AuditID:   auditID,
			Entity:    comp.Domain,
			URL:       r.URL,
			Scores:    scores,
			Composite: scores.Composite(),
			Issues:    issues,
			CreatedAt: time.Now(),
		})
	}
	if len(audits) == 0 {
		slog.Warn("competitor yielded no auditable pages", "domain", comp.Domain)
	}
	return audits
}
