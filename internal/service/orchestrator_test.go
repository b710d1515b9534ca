package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/answerlens/answerlens/internal/adapter/store"
	"github.com/answerlens/answerlens/internal/crawler"
	"github.com/answerlens/answerlens/internal/domain"
	"github.com/answerlens/answerlens/internal/port"
)

// fakeFetcher serves a small fixed web: the target site plus one
// competitor site.
type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (*port.FetchedPage, error) {
	body, ok := f.pages[rawURL]
	if !ok {
		return nil, errors.New("not found")
	}
	return &port.FetchedPage{URL: rawURL, StatusCode: 200, ContentType: "text/html", Body: body, HTML: true}, nil
}

func (f *fakeFetcher) Robots(_ context.Context, _ string) *port.RobotsRules {
	return &port.RobotsRules{}
}

type fakeSearcher struct{}

func (s *fakeSearcher) Search(_ context.Context, _ string, _ int) ([]port.SearchResult, error) {
	return []port.SearchResult{{URL: "https://rival.com/", Title: "Rival", Rank: 1}}, nil
}

type fakeReasoner struct {
	classifyErr   error
	synthesizeErr error
}

func (r *fakeReasoner) Classify(_ context.Context, _ domain.BusinessSummary) (*domain.Classification, error) {
	if r.classifyErr != nil {
		return nil, r.classifyErr
	}
	return &domain.Classification{Category: "manufacturing", Queries: []string{"widget makers"}}, nil
}

func (r *fakeReasoner) Synthesize(_ context.Context, _ domain.ReportContext) (string, error) {
	if r.synthesizeErr != nil {
		return "", r.synthesizeErr
	}
	return "# Readiness Report", nil
}

// recordingSink captures every progress event in order.
type recordingSink struct {
	mu     sync.Mutex
	events []int
	status []string
}

func (s *recordingSink) Progress(_, _ string, progress int, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, progress)
	s.status = append(s.status, status)
}

func sitePage(title string) string {
	return `<html><head><title>` + title + `</title>
<meta name="description" content="Widgets made well."></head><body>
<h1>` + title + `</h1>
<p>We build industrial widgets and ship them worldwide. Every widget passes a torque inspection
and a full pressure test before it leaves the line, and our service team answers questions
within one business day so downtime on your factory floor stays as short as possible.</p>
<a href="/about">About</a>
</body></html>`
}

func testOrchestrator(st port.AuditStore, reasoner port.Reasoner, sink ProgressSink) *Orchestrator {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://acme.com/":      sitePage("Acme Widgets"),
		"https://acme.com/about": sitePage("About Acme"),
		"https://rival.com/":     sitePage("Rival Widgets"),
	}}
	return NewOrchestrator(st, fetcher, &fakeSearcher{}, reasoner, sink, Options{
		Crawl:           crawler.Options{MaxPages: 5, MaxDepth: 1, Concurrency: 2},
		MaxCompetitors:  2,
		ResultsPerQuery: 5,
		CompetitorPages: 2,
	})
}

func TestCreateNormalizesSeed(t *testing.T) {
	o := testOrchestrator(store.NewMemoryStore(), &fakeReasoner{}, nil)

	audit, err := o.Create(context.Background(), "HTTPS://Acme.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if audit.TargetURL != "https://acme.com/" {
		t.Errorf("target url = %q, want normalized", audit.TargetURL)
	}
	if audit.Domain != "acme.com" {
		t.Errorf("domain = %q", audit.Domain)
	}
	if audit.Status != domain.AuditStatusPending || audit.Progress != 0 {
		t.Errorf("new audit must be pending at 0%%: %+v", audit)
	}
}

func TestCreateRejectsInvalidSeed(t *testing.T) {
	o := testOrchestrator(store.NewMemoryStore(), &fakeReasoner{}, nil)
	if _, err := o.Create(context.Background(), "ftp://acme.com"); !errors.Is(err, port.ErrInvalidSeedURL) {
		t.Fatalf("want ErrInvalidSeedURL, got %v", err)
	}
}

func TestRunFullPipeline(t *testing.T) {
	st := store.NewMemoryStore()
	sink := &recordingSink{}
	o := testOrchestrator(st, &fakeReasoner{}, sink)

	audit, err := o.Create(context.Background(), "https://acme.com/")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	o.Run(context.Background(), audit.ID)

	got, err := st.GetAudit(context.Background(), audit.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.AuditStatusCompleted {
		t.Fatalf("status = %q (%s), want completed", got.Status, got.ErrorMessage)
	}
	if got.Progress != 100 {
		t.Errorf("progress = %d, want 100", got.Progress)
	}
	if got.Category != "manufacturing" {
		t.Errorf("category = %q", got.Category)
	}

	results, err := st.GetAuditResults(context.Background(), audit.ID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	var targetPages, compPages int
	for _, p := range results.Pages {
		if p.Entity == domain.EntityTarget {
			targetPages++
		} else {
			compPages++
		}
	}
	if targetPages != 2 {
		t.Errorf("target pages = %d, want 2", targetPages)
	}
	if compPages == 0 {
		t.Error("competitor pages missing")
	}
	if len(results.Competitors) != 1 || results.Competitors[0].Domain != "rival.com" {
		t.Errorf("competitors = %+v", results.Competitors)
	}
	if len(results.Ranking) != 2 {
		t.Errorf("ranking rows = %d, want target + 1 competitor", len(results.Ranking))
	}
	if results.Report == nil || results.Report.Degraded {
		t.Errorf("want non-degraded report, got %+v", results.Report)
	}
	if results.Report.Narrative != "# Readiness Report" {
		t.Errorf("narrative = %q", results.Report.Narrative)
	}

	// Progress events must be monotone and end terminal.
	sink.mu.Lock()
	defer sink.mu.Unlock()
	for i := 1; i < len(sink.events); i++ {
		if sink.events[i] < sink.events[i-1] {
			t.Errorf("progress went backwards: %v", sink.events)
			break
		}
	}
	if len(sink.status) == 0 || sink.status[len(sink.status)-1] != domain.AuditStatusCompleted {
		t.Errorf("final event not completed: %v", sink.status)
	}
}

func TestRunDegradedReasoning(t *testing.T) {
	st := store.NewMemoryStore()
	o := testOrchestrator(st, &fakeReasoner{
		classifyErr:   errors.New("model down"),
		synthesizeErr: errors.New("model down"),
	}, nil)

	audit, err := o.Create(context.Background(), "https://acme.com/")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	o.Run(context.Background(), audit.ID)

	got, _ := st.GetAudit(context.Background(), audit.ID)
	if got.Status != domain.AuditStatusCompleted {
		t.Fatalf("reasoning failure must not fail the audit: %q (%s)", got.Status, got.ErrorMessage)
	}
	if got.Category != domain.CategoryUnknown {
		t.Errorf("category = %q, want unknown", got.Category)
	}

	results, _ := st.GetAuditResults(context.Background(), audit.ID)
	if results.Report == nil || !results.Report.Degraded {
		t.Errorf("want degraded templated report, got %+v", results.Report)
	}
	// Discovery still ran on the keyword fallback query.
	if len(results.Competitors) != 1 {
		t.Errorf("fallback discovery yielded %d competitors, want 1", len(results.Competitors))
	}
}

func TestRunNilReasoner(t *testing.T) {
	st := store.NewMemoryStore()
	o := testOrchestrator(st, nil, nil)

	audit, err := o.Create(context.Background(), "https://acme.com/")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	o.Run(context.Background(), audit.ID)

	got, _ := st.GetAudit(context.Background(), audit.ID)
	if got.Status != domain.AuditStatusCompleted || got.Category != domain.CategoryUnknown {
		t.Fatalf("nil reasoner run: %+v", got)
	}
}

func TestRunCancelled(t *testing.T) {
	st := store.NewMemoryStore()
	o := testOrchestrator(st, &fakeReasoner{}, nil)

	audit, err := o.Create(context.Background(), "https://acme.com/")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o.Run(ctx, audit.ID)

	got, _ := st.GetAudit(context.Background(), audit.ID)
	if got.Status != domain.AuditStatusFailed {
		t.Fatalf("cancelled run status = %q, want failed", got.Status)
	}
	if !strings.Contains(got.ErrorMessage, "cancelled") {
		t.Errorf("error message = %q", got.ErrorMessage)
	}
}

func TestRunRefusesNonPending(t *testing.T) {
	st := store.NewMemoryStore()
	o := testOrchestrator(st, &fakeReasoner{}, nil)

	audit, err := o.Create(context.Background(), "https://acme.com/")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	o.Run(context.Background(), audit.ID)
	first, _ := st.GetAudit(context.Background(), audit.ID)

	o.Run(context.Background(), audit.ID) // second run must be a no-op

	second, _ := st.GetAudit(context.Background(), audit.ID)
	if second.Status != first.Status || second.CompletedAt == nil || !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Errorf("re-running a terminal audit mutated it: %+v vs %+v", first, second)
	}
}
