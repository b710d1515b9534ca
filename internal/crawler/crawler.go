package crawler

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/answerlens/answerlens/internal/port"
)

// Options bounds one crawl.
type Options struct {
	MaxPages    int
	MaxDepth    int
	Concurrency int
}

func (o Options) withDefaults() Options {
	if o.MaxPages <= 0 {
		o.MaxPages = 25
	}
	if o.MaxDepth < 0 {
		o.MaxDepth = 0
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	return o
}

// Result is one crawled URL together with its fetched body, so that
// downstream analysis never refetches. Non-HTML and unreachable URLs
// are recorded but carry no body.
type Result struct {
	URL        string
	Depth      int
	HTML       bool
	Reachable  bool
	Body       string
	Discovered time.Time
}

// Crawler walks a site breadth-first inside its registrable domain,
// honoring robots Disallow rules and failing soft on individual URLs.
type Crawler struct {
	fetcher port.Fetcher
}

// New creates a crawler on top of the given fetcher.
func New(fetcher port.Fetcher) *Crawler {
	return &Crawler{fetcher: fetcher}
}

type queued struct {
	url   string
	depth int
}

// Crawl runs a bounded BFS from the seed. Discovery order is preserved
// in the returned slice; URLs are unique after normalization. The only
// hard error is an un-normalizable seed.
func (c *Crawler) Crawl(ctx context.Context, seedURL string, opts Options) ([]Result, error) {
	opts = opts.withDefaults()

	seed, err := NormalizeURL(seedURL)
	if err != nil {
		return nil, err
	}

	robots := c.fetcher.Robots(ctx, seed)

	seen := map[string]bool{seed: true}
	frontier := []queued{{url: seed, depth: 0}}
	var results []Result

	for len(frontier) > 0 && len(results) < opts.MaxPages {
		if ctx.Err() != nil {
			break
		}

		batch := frontier
		if remaining := opts.MaxPages - len(results); len(batch) > remaining {
			batch = batch[:remaining]
		}
		frontier = frontier[len(batch):]

		fetched := c.fetchBatch(ctx, batch, opts.Concurrency)

		// Walk the batch in frontier order so discovery order and the
		// next frontier stay deterministic.
		for i, q := range batch {
			page, fetchErr := fetched[i].page, fetched[i].err
			res := Result{URL: q.url, Depth: q.depth, Discovered: time.Now()}

			switch {
			case errors.Is(fetchErr, port.ErrNonHTMLContent):
				res.Reachable = true
			case fetchErr != nil:
				slog.Warn("crawl fetch failed", "url", q.url, "error", fetchErr)
			default:
				res.Reachable = true
				res.HTML = true
				res.Body = page.Body
			}
			results = append(results, res)

			if !res.HTML || q.depth >= opts.MaxDepth {
				continue
			}
			base := q.url
			if page != nil && page.URL != "" {
				base = page.URL
			}
			for _, link := range extractLinks(res.Body, base) {
				if seen[link] || !SameSite(seed, link) {
					continue
				}
				if u, err := url.Parse(link); err == nil && !robots.Allows(u.Path) {
					continue
				}
				seen[link] = true
				frontier = append(frontier, queued{url: link, depth: q.depth + 1})
			}
		}
	}

	return results, nil
}

type fetchOutcome struct {
	page *port.FetchedPage
	err  error
}

// fetchBatch fetches one frontier level with a bounded worker pool.
func (c *Crawler) fetchBatch(ctx context.Context, batch []queued, concurrency int) []fetchOutcome {
	outcomes := make([]fetchOutcome, len(batch))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, q := range batch {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, rawURL string) {
			defer wg.Done()
			defer func() { <-sem }()
			page, err := c.fetcher.Fetch(ctx, rawURL)
			outcomes[i] = fetchOutcome{page: page, err: err}
		}(i, q.url)
	}
	wg.Wait()
	return outcomes
}

// extractLinks pulls same-document hyperlinks out of HTML, resolved
// against the base URL and normalized. Parse failures yield no links.
func extractLinks(body, baseURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	var links []string
	seen := map[string]bool{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !crawlableLink(href) {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		normalized, err := NormalizeURL(base.ResolveReference(ref).String())
		if err != nil || seen[normalized] {
			return
		}
		seen[normalized] = true
		links = append(links, normalized)
	})
	return links
}
