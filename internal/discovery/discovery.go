// Package discovery finds competitor sites by fanning candidate
// queries out to the external search index and reducing the hits to a
// bounded set of distinct domains.
package discovery

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/answerlens/answerlens/internal/crawler"
	"github.com/answerlens/answerlens/internal/domain"
	"github.com/answerlens/answerlens/internal/port"
)

// Options bounds one discovery run.
type Options struct {
	MaxCompetitors  int // N: competitors kept
	ResultsPerQuery int // K: search hits consumed per query
	MaxQueries      int
}

func (o Options) withDefaults() Options {
	if o.MaxCompetitors <= 0 {
		o.MaxCompetitors = 4
	}
	if o.ResultsPerQuery <= 0 {
		o.ResultsPerQuery = 8
	}
	if o.MaxQueries <= 0 {
		o.MaxQueries = 10
	}
	return o
}

// Discoverer selects competitor domains from search results.
type Discoverer struct {
	searcher port.Searcher
	opts     Options
}

// New creates a discoverer.
func New(searcher port.Searcher, opts Options) *Discoverer {
	return &Discoverer{searcher: searcher, opts: opts.withDefaults()}
}

// candidate accumulates cross-query evidence for one domain.
type candidate struct {
	domain    string
	url       string
	bestRank  int
	queries   map[string]bool
	firstSeen int
}

// Discover runs the candidate queries and returns at most N competitors
// with distinct registrable domains, none matching the target's. Failed
// queries are absorbed; zero results is a valid outcome, not an error.
func (d *Discoverer) Discover(ctx context.Context, queries []string, targetDomain string) []domain.Competitor {
	opts := d.opts
	if len(queries) > opts.MaxQueries {
		queries = queries[:opts.MaxQueries]
	}

	candidates := map[string]*candidate{}
	order := 0

	for _, query := range queries {
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}
		hits, err := d.searcher.Search(ctx, query, opts.ResultsPerQuery)
		if err != nil {
			slog.Warn("discovery query failed", "query", query, "error", err)
			continue
		}
		for _, hit := range hits {
			normalized, err := crawler.NormalizeURL(hit.URL)
			if err != nil {
				continue // non-web or malformed result
			}
			if !crawler.LikelyHTML(normalized) {
				continue // document or asset hit, not a site
			}
			dom := crawler.RegistrableDomain(normalized)
			if dom == "" || dom == targetDomain {
				continue
			}
			c, ok := candidates[dom]
			if !ok {
				c = &candidate{
					domain:    dom,
					url:       normalized,
					bestRank:  hit.Rank,
					queries:   map[string]bool{},
					firstSeen: order,
				}
				candidates[dom] = c
				order++
			}
			c.queries[query] = true
			if hit.Rank < c.bestRank {
				c.bestRank = hit.Rank
			}
		}
	}

	return d.selectTop(candidates)
}

// selectTop ranks candidates by a score combining best search rank
// (lower is better) and query diversity (appearing across more distinct
// queries ranks higher). Ties break by first-seen order.
func (d *Discoverer) selectTop(candidates map[string]*candidate) []domain.Competitor {
	list := make([]*candidate, 0, len(candidates))
	for _, c := range candidates {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		si, sj := score(list[i], d.opts.ResultsPerQuery), score(list[j], d.opts.ResultsPerQuery)
		if si == sj {
			return list[i].firstSeen < list[j].firstSeen
		}
		return si > sj
	})

	n := d.opts.MaxCompetitors
	if n > len(list) {
		n = len(list)
	}
	comps := make([]domain.Competitor, 0, n)
	for i := 0; i < n; i++ {
		comps = append(comps, domain.Competitor{
			Domain: list[i].domain,
			URL:    list[i].url,
			Rank:   i + 1,
			Score:  score(list[i], d.opts.ResultsPerQuery),
		})
	}
	return comps
}

// score: each distinct query a domain appears in is worth one full
// page of rank positions, so diversity dominates rank.
func score(c *candidate, resultsPerQuery int) float64 {
	return float64(len(c.queries)*resultsPerQuery) + float64(resultsPerQuery+1-c.bestRank)
}

// FallbackQuery derives a deterministic discovery query from the
// target's own detected keywords, used when the classifier is degraded.
func FallbackQuery(keywords []string) string {
	if len(keywords) == 0 {
		return ""
	}
	n := len(keywords)
	if n > 4 {
		n = 4
	}
	return strings.Join(keywords[:n], " ")
}
