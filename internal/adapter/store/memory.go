package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/answerlens/answerlens/internal/domain"
	"github.com/answerlens/answerlens/internal/port"
)

// MemoryStore implements port.AuditStore in memory. It backs tests and
// database-less runs; semantics mirror PostgresStore, including
// terminal-state immutability and monotone progress.
type MemoryStore struct {
	mu          sync.RWMutex
	audits      map[string]*domain.Audit
	crawled     map[string][]domain.CrawledURL
	pages       map[string][]domain.PageAudit
	competitors map[string][]domain.Competitor
	ranking     map[string][]domain.ComparativeResult
	fixPlans    map[string][]domain.FixPlanItem
	reports     map[string]*domain.Report
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		audits:      make(map[string]*domain.Audit),
		crawled:     make(map[string][]domain.CrawledURL),
		pages:       make(map[string][]domain.PageAudit),
		competitors: make(map[string][]domain.Competitor),
		ranking:     make(map[string][]domain.ComparativeResult),
		fixPlans:    make(map[string][]domain.FixPlanItem),
		reports:     make(map[string]*domain.Report),
	}
}

// CreateAudit stores a new audit.
func (s *MemoryStore) CreateAudit(_ context.Context, a *domain.Audit) (*domain.Audit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.audits[a.ID] = &cp
	out := cp
	return &out, nil
}

// GetAudit returns a copy of the audit.
func (s *MemoryStore) GetAudit(_ context.Context, id string) (*domain.Audit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.audits[id]
	if !ok {
		return nil, port.ErrAuditNotFound
	}
	cp := *a
	return &cp, nil
}

// ListAudits returns recent audits, newest first.
func (s *MemoryStore) ListAudits(_ context.Context, limit int) ([]domain.Audit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	audits := make([]domain.Audit, 0, len(s.audits))
	for _, a := range s.audits {
		audits = append(audits, *a)
	}
	sort.Slice(audits, func(i, j int) bool {
		return audits[i].CreatedAt.After(audits[j].CreatedAt)
	})
	if len(audits) > limit {
		audits = audits[:limit]
	}
	return audits, nil
}

// UpdateAuditStatus applies a lifecycle transition.
func (s *MemoryStore) UpdateAuditStatus(_ context.Context, id, status string, progress int, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.audits[id]
	if !ok {
		return port.ErrAuditNotFound
	}
	if a.Terminal() {
		return port.ErrAuditTerminal
	}
	a.Status = status
	if progress > a.Progress {
		a.Progress = progress
	}
	a.ErrorMessage = errMsg
	now := time.Now()
	if status == domain.AuditStatusRunning && a.StartedAt == nil {
		a.StartedAt = &now
	}
	if status == domain.AuditStatusCompleted || status == domain.AuditStatusFailed {
		a.CompletedAt = &now
	}
	return nil
}

// UpdateClassification records the classifier stage output.
func (s *MemoryStore) UpdateClassification(_ context.Context, id string, sensitive bool, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.audits[id]
	if !ok {
		return port.ErrAuditNotFound
	}
	if a.Terminal() {
		return port.ErrAuditTerminal
	}
	a.Sensitive = sensitive
	a.Category = category
	return nil
}

// SaveCrawledURLs stores the crawl stage output.
func (s *MemoryStore) SaveCrawledURLs(_ context.Context, auditID string, urls []domain.CrawledURL) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.crawled[auditID] = append([]domain.CrawledURL(nil), urls...)
	return nil
}

// SavePageAudits appends one auditing stage output.
func (s *MemoryStore) SavePageAudits(_ context.Context, auditID string, pages []domain.PageAudit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[auditID] = append(s.pages[auditID], pages...)
	return nil
}

// SaveCompetitors stores the discovery stage output.
func (s *MemoryStore) SaveCompetitors(_ context.Context, auditID string, comps []domain.Competitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.competitors[auditID] = append([]domain.Competitor(nil), comps...)
	return nil
}

// SaveComparativeResults replaces the ranking rows.
func (s *MemoryStore) SaveComparativeResults(_ context.Context, auditID string, rows []domain.ComparativeResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranking[auditID] = append([]domain.ComparativeResult(nil), rows...)
	return nil
}

// SaveFixPlan replaces the fix plan.
func (s *MemoryStore) SaveFixPlan(_ context.Context, auditID string, items []domain.FixPlanItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixPlans[auditID] = append([]domain.FixPlanItem(nil), items...)
	return nil
}

// SaveReport stores the narrative report.
func (s *MemoryStore) SaveReport(_ context.Context, report *domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *report
	s.reports[report.AuditID] = &cp
	return nil
}

// GetAuditResults assembles the consumer-facing contract.
func (s *MemoryStore) GetAuditResults(ctx context.Context, id string) (*domain.AuditResults, error) {
	audit, err := s.GetAudit(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := &domain.AuditResults{
		Audit:       audit,
		Pages:       append([]domain.PageAudit(nil), s.pages[id]...),
		Competitors: append([]domain.Competitor(nil), s.competitors[id]...),
		Ranking:     append([]domain.ComparativeResult(nil), s.ranking[id]...),
		FixPlan:     append([]domain.FixPlanItem(nil), s.fixPlans[id]...),
	}
	if rep, ok := s.reports[id]; ok {
		cp := *rep
		results.Report = &cp
	}
	return results, nil
}

// WriteRequestLog implements middleware.RequestLogWriter as a no-op
// sink; memory runs keep request logs out of band.
func (s *MemoryStore) WriteRequestLog(method, path string, status int, details, ip, userAgent string) error {
	return nil
}
