package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/answerlens/answerlens/internal/port"
)

// SearxClient implements port.Searcher against a SearxNG-compatible
// JSON search endpoint.
type SearxClient struct {
	baseURL    string
	apiKey     string // optional bearer token
	httpClient *http.Client
}

// New creates a search client for the given base URL.
func New(baseURL, apiKey string, timeout time.Duration) *SearxClient {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &SearxClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Search runs one query and returns at most limit ranked results.
func (s *SearxClient) Search(ctx context.Context, query string, limit int) ([]port.SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("search API error (%d): %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Results []struct {
			URL     string `json:"url"`
			Title   string `json:"title"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]port.SearchResult, 0, limit)
	for i, r := range parsed.Results {
		if r.URL == "" {
			continue
		}
		results = append(results, port.SearchResult{
			URL:     r.URL,
			Title:   r.Title,
			Snippet: r.Content,
			Rank:    i + 1,
		})
		if len(results) == limit {
			break
		}
	}
	return results, nil
}
