package port

import "context"

// SearchResult is one ranked hit from the external search index.
type SearchResult struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
	Rank    int    `json:"rank"` // 1 = best within its query
}

// Searcher is the external search index: query in, ranked URLs out.
// Consumed only by competitor discovery.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}
