// Package service contains the audit orchestrator: the state machine
// that sequences crawl, page auditing, classification, competitor
// discovery, competitive auditing, comparative scoring and report
// synthesis. It is the only component that writes persisted state.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/answerlens/answerlens/internal/auditor"
	"github.com/answerlens/answerlens/internal/crawler"
	"github.com/answerlens/answerlens/internal/discovery"
	"github.com/answerlens/answerlens/internal/domain"
	"github.com/answerlens/answerlens/internal/port"
	"github.com/answerlens/answerlens/internal/ranking"
	"github.com/answerlens/answerlens/internal/report"
)

// Progress checkpoints written after each stage completes. Progress is
// monotone: terminal states leave it unchanged or at 100.
const (
	progressCrawled     = 10
	progressAudited     = 30
	progressClassified  = 45
	progressDiscovered  = 60
	progressCompetitors = 75
	progressRanked      = 90
	progressDone        = 100
)

// ProgressSink receives stage-by-stage updates for live streaming.
type ProgressSink interface {
	Progress(auditID, stage string, progress int, status string)
}

// Options bounds one pipeline run.
type Options struct {
	Crawl           crawler.Options
	MaxCompetitors  int
	ResultsPerQuery int
	CompetitorPages int
	StageTimeout    time.Duration // per reasoning/search stage
}

// Orchestrator wires the pipeline stages together.
type Orchestrator struct {
	store       port.AuditStore
	crawler     *crawler.Crawler
	pages       *auditor.PageAuditor
	competitive *auditor.CompetitiveAuditor
	discoverer  *discovery.Discoverer
	reasoner    port.Reasoner
	synthesizer *report.Synthesizer
	sink        ProgressSink
	opts        Options
}

// NewOrchestrator creates the orchestrator. reasoner may be nil; the
// pipeline then runs with degraded classification and a templated
// report. sink may be nil.
func NewOrchestrator(store port.AuditStore, fetcher port.Fetcher, searcher port.Searcher, reasoner port.Reasoner, sink ProgressSink, opts Options) *Orchestrator {
	c := crawler.New(fetcher)
	p := auditor.New()

	competitive := auditor.NewCompetitiveAuditor(c, p)
	if opts.CompetitorPages > 0 {
		competitive.MaxPages = opts.CompetitorPages
	}
	if opts.StageTimeout == 0 {
		opts.StageTimeout = 90 * time.Second
	}

	return &Orchestrator{
		store:       store,
		crawler:     c,
		pages:       p,
		competitive: competitive,
		discoverer: discovery.New(searcher, discovery.Options{
			MaxCompetitors:  opts.MaxCompetitors,
			ResultsPerQuery: opts.ResultsPerQuery,
		}),
		reasoner:    reasoner,
		synthesizer: report.NewSynthesizer(reasoner),
		sink:        sink,
		opts:        opts,
	}
}

// Create registers a new pending audit for the target URL. The seed
// must be normalizable; that is the one precondition checked up front.
func (o *Orchestrator) Create(ctx context.Context, targetURL string) (*domain.Audit, error) {
	normalized, err := crawler.NormalizeURL(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrInvalidSeedURL, err)
	}

	audit := &domain.Audit{
		ID:        uuid.New().String(),
		TargetURL: normalized,
		Domain:    crawler.RegistrableDomain(normalized),
		Status:    domain.AuditStatusPending,
		Category:  domain.CategoryUnknown,
		CreatedAt: time.Now(),
	}
	return o.store.CreateAudit(ctx, audit)
}

// Run executes the full pipeline for a pending audit. Stages run
// strictly sequentially; soft per-item failures are absorbed inside the
// stages, and only precondition or storage errors are fatal.
func (o *Orchestrator) Run(ctx context.Context, auditID string) {
	audit, err := o.store.GetAudit(ctx, auditID)
	if err != nil {
		slog.Error("audit load failed", "audit_id", auditID, "error", err)
		return
	}
	if audit.Status != domain.AuditStatusPending {
		slog.Warn("audit not pending, refusing to run", "audit_id", auditID, "status", audit.Status)
		return
	}

	progress := 0
	if err := o.transition(ctx, auditID, domain.AuditStatusRunning, progress, ""); err != nil {
		slog.Error("audit start transition failed", "audit_id", auditID, "error", err)
		return
	}

	fail := func(stage string, cause error) {
		msg := fmt.Sprintf("%s: %v", stage, cause)
		slog.Error("audit failed", "audit_id", auditID, "stage", stage, "error", cause)
		if err := o.transition(ctx, auditID, domain.AuditStatusFailed, progress, msg); err != nil {
			slog.Error("failure transition not persisted", "audit_id", auditID, "error", err)
		}
	}
	cancelled := func(stage string) bool {
		if ctx.Err() == nil {
			return false
		}
		fail(stage, port.ErrCancelled)
		return true
	}

	// ── Stage 1: crawl the target ───────────────────────────────────
	results, err := o.crawler.Crawl(ctx, audit.TargetURL, o.opts.Crawl)
	if err != nil {
		fail("crawl", err)
		return
	}
	urls := make([]domain.CrawledURL, 0, len(results))
	for _, r := range results {
		urls = append(urls, domain.CrawledURL{
			AuditID:    auditID,
			URL:        r.URL,
			Depth:      r.Depth,
			HTML:       r.HTML,
			Reachable:  r.Reachable,
			Discovered: r.Discovered,
		})
	}
	if err := o.store.SaveCrawledURLs(ctx, auditID, urls); err != nil {
		fail("persist crawl", err)
		return
	}
	progress = progressCrawled
	o.checkpoint(ctx, auditID, "crawl", progress)
	if cancelled("crawl") {
		return
	}

	// ── Stage 2: audit target pages ─────────────────────────────────
	var targetPages []domain.PageAudit
	summary := domain.BusinessSummary{TargetURL: audit.TargetURL, Domain: audit.Domain}
	var corpus strings.Builder
	for _, r := range results {
		if !r.HTML {
			continue
		}
		in := auditor.Parse(r.URL, r.Body)
		scores, issues := o.pages.AuditParsed(in)
		page := domain.PageAudit{
			ID:        uuid.New().String(),
			AuditID:   auditID,
			Entity:    domain.EntityTarget,
			URL:       r.URL,
			Scores:    scores,
			Composite: scores.Composite(),
			Issues:    issues,
			CreatedAt: time.Now(),
		}
		targetPages = append(targetPages, page)
		summary.Pages = append(summary.Pages, pageSummary(page, auditor.Title(in), in.Text))
		if corpus.Len() < 64<<10 {
			corpus.WriteString(in.Text)
			corpus.WriteString(" ")
		}
	}
	summary.Keywords = auditor.TopKeywords(corpus.String(), 10)
	if err := o.store.SavePageAudits(ctx, auditID, targetPages); err != nil {
		fail("persist page audits", err)
		return
	}
	progress = progressAudited
	o.checkpoint(ctx, auditID, "page-audit", progress)
	if cancelled("page-audit") {
		return
	}

	// ── Stage 3: external intelligence classification ───────────────
	classification := o.classify(ctx, summary)
	if err := o.store.UpdateClassification(ctx, auditID, classification.Sensitive, classification.Category); err != nil {
		fail("persist classification", err)
		return
	}
	progress = progressClassified
	o.checkpoint(ctx, auditID, "classify", progress)
	if cancelled("classify") {
		return
	}

	// ── Stage 4: competitor discovery ───────────────────────────────
	queries := classification.Queries
	if len(queries) == 0 {
		if fallback := discovery.FallbackQuery(summary.Keywords); fallback != "" {
			queries = []string{fallback}
		}
	}
	competitors := o.discoverer.Discover(ctx, queries, audit.Domain)
	for i := range competitors {
		competitors[i].AuditID = auditID
	}
	if err := o.store.SaveCompetitors(ctx, auditID, competitors); err != nil {
		fail("persist competitors", err)
		return
	}
	progress = progressDiscovered
	o.checkpoint(ctx, auditID, "discover", progress)
	if cancelled("discover") {
		return
	}

	// ── Stage 5: competitive auditing ───────────────────────────────
	compPages := o.competitive.AuditAll(ctx, auditID, competitors)
	if err := o.store.SavePageAudits(ctx, auditID, compPages); err != nil {
		fail("persist competitor audits", err)
		return
	}
	progress = progressCompetitors
	o.checkpoint(ctx, auditID, "competitor-audit", progress)
	if cancelled("competitor-audit") {
		return
	}

	// ── Stage 6: comparative scoring ────────────────────────────────
	rows := ranking.Rank(auditID, targetPages, competitors, compPages)
	if err := o.store.SaveComparativeResults(ctx, auditID, rows); err != nil {
		fail("persist ranking", err)
		return
	}
	progress = progressRanked
	o.checkpoint(ctx, auditID, "rank", progress)
	if cancelled("rank") {
		return
	}

	// ── Stage 7: fix plan and narrative report ──────────────────────
	fixPlan := report.BuildFixPlan(auditID, targetPages)
	if err := o.store.SaveFixPlan(ctx, auditID, fixPlan); err != nil {
		fail("persist fix plan", err)
		return
	}

	audit.Sensitive = classification.Sensitive
	audit.Category = classification.Category
	rc := domain.ReportContext{
		Audit:          audit,
		Classification: classification,
		Target:         summary,
		Competitors:    competitorSummaries(competitors, rows),
		Ranking:        rows,
		FixPlan:        fixPlan,
	}
	synthCtx, cancel := context.WithTimeout(ctx, o.opts.StageTimeout)
	rep := o.synthesizer.Synthesize(synthCtx, rc)
	cancel()
	if err := o.store.SaveReport(ctx, rep); err != nil {
		fail("persist report", err)
		return
	}

	progress = progressDone
	if err := o.transition(ctx, auditID, domain.AuditStatusCompleted, progress, ""); err != nil {
		slog.Error("completion transition not persisted", "audit_id", auditID, "error", err)
		return
	}
	slog.Info("audit completed", "audit_id", auditID, "pages", len(targetPages), "competitors", len(competitors), "degraded_report", rep.Degraded)
}

// classify invokes the reasoning service; any failure degrades to an
// unknown classification with no queries rather than aborting.
func (o *Orchestrator) classify(ctx context.Context, summary domain.BusinessSummary) *domain.Classification {
	degraded := &domain.Classification{Category: domain.CategoryUnknown}
	if o.reasoner == nil {
		return degraded
	}
	callCtx, cancel := context.WithTimeout(ctx, o.opts.StageTimeout)
	defer cancel()
	classification, err := o.reasoner.Classify(callCtx, summary)
	if err != nil {
		slog.Warn("classification degraded", "error", err)
		return degraded
	}
	return classification
}

func (o *Orchestrator) transition(ctx context.Context, auditID, status string, progress int, errMsg string) error {
	if err := o.store.UpdateAuditStatus(ctx, auditID, status, progress, errMsg); err != nil {
		return err
	}
	if o.sink != nil {
		o.sink.Progress(auditID, "", progress, status)
	}
	return nil
}

// checkpoint records stage completion; a progress write failing is not
// fatal mid-pipeline, the next stage write will retry the row.
func (o *Orchestrator) checkpoint(ctx context.Context, auditID, stage string, progress int) {
	if err := o.store.UpdateAuditStatus(ctx, auditID, domain.AuditStatusRunning, progress, ""); err != nil {
		slog.Warn("progress checkpoint not persisted", "audit_id", auditID, "stage", stage, "error", err)
	}
	if o.sink != nil {
		o.sink.Progress(auditID, stage, progress, domain.AuditStatusRunning)
	}
	slog.Info("audit stage complete", "audit_id", auditID, "stage", stage, "progress", progress)
}

func pageSummary(page domain.PageAudit, title, text string) domain.PageSummary {
	sum := domain.PageSummary{
		URL:       page.URL,
		Title:     title,
		Composite: page.Composite,
		WordCount: len(strings.Fields(text)),
	}
	for i, issue := range page.Issues {
		if i == 5 {
			break
		}
		sum.TopIssues = append(sum.TopIssues, string(issue.Category))
	}
	sum.SchemaSeen = page.Scores.Schema > 0
	return sum
}

func competitorSummaries(comps []domain.Competitor, rows []domain.ComparativeResult) []domain.CompetitorSummary {
	byEntity := map[string]domain.ComparativeResult{}
	for _, row := range rows {
		byEntity[row.Entity] = row
	}
	var sums []domain.CompetitorSummary
	for _, comp := range comps {
		row, ok := byEntity[comp.Domain]
		if !ok {
			continue
		}
		sums = append(sums, domain.CompetitorSummary{
			Domain:    comp.Domain,
			Scores:    row.Scores,
			Composite: row.Composite,
		})
	}
	return sums
}
