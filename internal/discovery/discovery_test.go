package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/answerlens/answerlens/internal/port"
)

type stubSearcher struct {
	results map[string][]port.SearchResult
	failing map[string]bool
}

func (s *stubSearcher) Search(_ context.Context, query string, limit int) ([]port.SearchResult, error) {
	if s.failing[query] {
		return nil, errors.New("search backend down")
	}
	hits := s.results[query]
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func hit(rank int, url string) port.SearchResult {
	return port.SearchResult{URL: url, Rank: rank}
}

func TestDiscoverBoundedAndDeduped(t *testing.T) {
	s := &stubSearcher{results: map[string][]port.SearchResult{
		"widget makers": {
			hit(1, "https://alpha.com/products"),
			hit(2, "https://www.alpha.com/about"),
			hit(3, "https://beta.com/"),
			hit(4, "https://gamma.com/"),
			hit(5, "https://delta.com/"),
		},
	}}

	comps := New(s, Options{MaxCompetitors: 2, ResultsPerQuery: 8}).Discover(context.Background(), []string{"widget makers"}, "acme.com")
	if len(comps) != 2 {
		t.Fatalf("got %d competitors, want 2", len(comps))
	}
	if comps[0].Domain != "alpha.com" {
		t.Errorf("best-ranked domain first: got %q", comps[0].Domain)
	}
	if comps[0].Rank != 1 || comps[1].Rank != 2 {
		t.Errorf("ranks must be 1..N: %+v", comps)
	}
	seen := map[string]bool{}
	for _, c := range comps {
		if seen[c.Domain] {
			t.Errorf("duplicate domain %q", c.Domain)
		}
		seen[c.Domain] = true
	}
}

func TestDiscoverExcludesTargetDomain(t *testing.T) {
	s := &stubSearcher{results: map[string][]port.SearchResult{
		"q": {
			hit(1, "https://acme.com/self"),
			hit(2, "https://www.acme.com/blog"),
			hit(3, "https://rival.com/"),
		},
	}}

	comps := New(s, Options{}).Discover(context.Background(), []string{"q"}, "acme.com")
	if len(comps) != 1 || comps[0].Domain != "rival.com" {
		t.Fatalf("target domain must never appear as competitor: %+v", comps)
	}
}

func TestDiscoverQueryDiversityOutranksSingleHit(t *testing.T) {
	// beta appears once at rank 1; alpha appears across two queries at
	// worse ranks. Diversity wins.
	s := &stubSearcher{results: map[string][]port.SearchResult{
		"q1": {hit(1, "https://beta.com/"), hit(5, "https://alpha.com/")},
		"q2": {hit(6, "https://alpha.com/")},
	}}

	comps := New(s, Options{MaxCompetitors: 2, ResultsPerQuery: 8}).Discover(context.Background(), []string{"q1", "q2"}, "acme.com")
	if len(comps) != 2 {
		t.Fatalf("got %d competitors, want 2", len(comps))
	}
	if comps[0].Domain != "alpha.com" {
		t.Errorf("multi-query domain should rank first, got %q", comps[0].Domain)
	}
}

func TestDiscoverAbsorbsFailedQueries(t *testing.T) {
	s := &stubSearcher{
		results: map[string][]port.SearchResult{"good": {hit(1, "https://rival.com/")}},
		failing: map[string]bool{"bad": true},
	}

	comps := New(s, Options{}).Discover(context.Background(), []string{"bad", "good"}, "acme.com")
	if len(comps) != 1 || comps[0].Domain != "rival.com" {
		t.Fatalf("failing query must not abort discovery: %+v", comps)
	}
}

func TestDiscoverSkipsMalformedResults(t *testing.T) {
	s := &stubSearcher{results: map[string][]port.SearchResult{
		"q": {
			hit(1, "ftp://not-web.com/x"),
			hit(2, ""),
			hit(3, "https://rival.com/"),
		},
	}}

	comps := New(s, Options{}).Discover(context.Background(), []string{"q"}, "acme.com")
	if len(comps) != 1 || comps[0].Domain != "rival.com" {
		t.Fatalf("malformed result URLs must be skipped: %+v", comps)
	}
}

func TestDiscoverSkipsNonHTMLResults(t *testing.T) {
	// A document hit must not make its domain a competitor, and must
	// not override a later page hit as the representative URL.
	s := &stubSearcher{results: map[string][]port.SearchResult{
		"q": {
			hit(1, "https://docsite.com/brochure.pdf"),
			hit(2, "https://rival.com/catalog.pdf"),
			hit(3, "https://rival.com/products"),
		},
	}}

	comps := New(s, Options{}).Discover(context.Background(), []string{"q"}, "acme.com")
	if len(comps) != 1 || comps[0].Domain != "rival.com" {
		t.Fatalf("document-only domains must be skipped: %+v", comps)
	}
	if comps[0].URL != "https://rival.com/products" {
		t.Errorf("representative URL = %q, want the page hit", comps[0].URL)
	}
}

func TestDiscoverNoQueries(t *testing.T) {
	comps := New(&stubSearcher{}, Options{}).Discover(context.Background(), nil, "acme.com")
	if len(comps) != 0 {
		t.Fatalf("no queries must yield no competitors, got %+v", comps)
	}
}

func TestFallbackQuery(t *testing.T) {
	if got := FallbackQuery([]string{"plumbing", "repair", "seattle", "emergency", "pipes"}); got != "plumbing repair seattle emergency" {
		t.Errorf("FallbackQuery = %q", got)
	}
	if got := FallbackQuery([]string{"one"}); got != "one" {
		t.Errorf("FallbackQuery = %q", got)
	}
	if got := FallbackQuery(nil); got != "" {
		t.Errorf("FallbackQuery(nil) = %q, want empty", got)
	}
}
