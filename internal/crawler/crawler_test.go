package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/answerlens/answerlens/internal/port"
)

// stubFetcher serves canned pages keyed by normalized URL.
type stubFetcher struct {
	pages   map[string]string
	nonHTML map[string]bool
	fail    map[string]bool
	robots  *port.RobotsRules
}

func (f *stubFetcher) Fetch(_ context.Context, rawURL string) (*port.FetchedPage, error) {
	if f.fail[rawURL] {
		return nil, errors.New("connection refused")
	}
	if f.nonHTML[rawURL] {
		return &port.FetchedPage{URL: rawURL, StatusCode: 200, ContentType: "application/pdf"}, port.ErrNonHTMLContent
	}
	body, ok := f.pages[rawURL]
	if !ok {
		return nil, errors.New("not found")
	}
	return &port.FetchedPage{URL: rawURL, StatusCode: 200, ContentType: "text/html", Body: body, HTML: true}, nil
}

func (f *stubFetcher) Robots(_ context.Context, _ string) *port.RobotsRules {
	if f.robots == nil {
		return &port.RobotsRules{}
	}
	return f.robots
}

func TestCrawlDiscoveryOrderAndScope(t *testing.T) {
	f := &stubFetcher{
		pages: map[string]string{
			"https://example.com/": `<html><body>
				<a href="/a">a</a>
				<a href="/b">b</a>
				<a href="/a">dup</a>
				<a href="https://other.com/x">external</a>
				<a href="/style.css">asset</a>
				<a href="/private/secret">blocked</a>
			</body></html>`,
			"https://example.com/a": `<html><body><a href="/b">b again</a></body></html>`,
			"https://example.com/b": `<html><body>leaf</body></html>`,
		},
		robots: &port.RobotsRules{Disallow: []string{"/private"}},
	}

	results, err := New(f).Crawl(context.Background(), "https://Example.com", Options{MaxPages: 10, MaxDepth: 2})
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}

	want := []string{"https://example.com/", "https://example.com/a", "https://example.com/b"}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d: %+v", len(results), len(want), results)
	}
	for i, r := range results {
		if r.URL != want[i] {
			t.Errorf("result[%d] = %q, want %q", i, r.URL, want[i])
		}
		if !r.Reachable || !r.HTML {
			t.Errorf("result[%d] should be reachable HTML", i)
		}
	}
	if results[0].Depth != 0 || results[1].Depth != 1 || results[2].Depth != 1 {
		t.Errorf("unexpected depths: %+v", results)
	}
}

func TestCrawlMaxPages(t *testing.T) {
	f := &stubFetcher{
		pages: map[string]string{
			"https://example.com/":  `<html><body><a href="/a">a</a><a href="/b">b</a><a href="/c">c</a></body></html>`,
			"https://example.com/a": `<html><body></body></html>`,
			"https://example.com/b": `<html><body></body></html>`,
			"https://example.com/c": `<html><body></body></html>`,
		},
	}

	results, err := New(f).Crawl(context.Background(), "https://example.com/", Options{MaxPages: 2, MaxDepth: 3})
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
}

func TestCrawlSoftFailure(t *testing.T) {
	f := &stubFetcher{
		pages: map[string]string{
			"https://example.com/":   `<html><body><a href="/down">down</a><a href="/up">up</a></body></html>`,
			"https://example.com/up": `<html><body>fine</body></html>`,
		},
		fail: map[string]bool{"https://example.com/down": true},
	}

	results, err := New(f).Crawl(context.Background(), "https://example.com/", Options{MaxPages: 10, MaxDepth: 1})
	if err != nil {
		t.Fatalf("unreachable URL must not fail the crawl: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for _, r := range results {
		if r.URL == "https://example.com/down" {
			if r.Reachable || r.HTML || r.Body != "" {
				t.Errorf("failed URL should be recorded unreachable with no body: %+v", r)
			}
		}
	}
}

func TestCrawlNonHTMLRecorded(t *testing.T) {
	f := &stubFetcher{
		pages: map[string]string{
			"https://example.com/": `<html><body><a href="/brochure">pdf</a></body></html>`,
		},
		nonHTML: map[string]bool{"https://example.com/brochure": true},
	}

	results, err := New(f).Crawl(context.Background(), "https://example.com/", Options{MaxPages: 10, MaxDepth: 1})
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	got := results[1]
	if !got.Reachable || got.HTML || got.Body != "" {
		t.Errorf("non-HTML URL should be reachable, non-HTML, bodiless: %+v", got)
	}
}

func TestCrawlDepthZero(t *testing.T) {
	f := &stubFetcher{
		pages: map[string]string{
			"https://example.com/": `<html><body><a href="/a">a</a></body></html>`,
		},
	}

	results, err := New(f).Crawl(context.Background(), "https://example.com/", Options{MaxPages: 10})
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("depth 0 crawl should fetch only the seed, got %d results", len(results))
	}
}

func TestCrawlInvalidSeed(t *testing.T) {
	if _, err := New(&stubFetcher{}).Crawl(context.Background(), "ftp://example.com", Options{}); err == nil {
		t.Fatal("expected error for un-normalizable seed")
	}
}
