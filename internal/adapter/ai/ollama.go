package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/answerlens/answerlens/internal/domain"
	"github.com/answerlens/answerlens/internal/port"
)

// OllamaEndpointConfig holds the configuration for the Ollama endpoint.
type OllamaEndpointConfig struct {
	BaseURL string // e.g. http://localhost:11434 or https://api.ollama.com
	Model   string // e.g. qwen3
	Token   string // Bearer token for Ollama Cloud (empty = no auth)
}

// OllamaReasoner implements port.Reasoner using the Ollama REST API.
type OllamaReasoner struct {
	cfg        OllamaEndpointConfig
	httpClient *http.Client
}

// NewOllamaReasoner creates a new Ollama-backed reasoning provider.
func NewOllamaReasoner(cfg OllamaEndpointConfig, timeout time.Duration) *OllamaReasoner {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &OllamaReasoner{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ModelName returns the chat model identifier.
func (o *OllamaReasoner) ModelName() string {
	return o.cfg.Model
}

const classifySystemPrompt = `You are a search-quality rater. Given a summary of a website, respond with ONLY a JSON object, no prose, in this exact shape:
{"sensitive": <true if the site covers health, finance, legal or similar high-scrutiny topics>, "category": "<short business category>", "queries": ["<up to 10 web search queries a potential customer would use to find businesses like this one>"]}`

// Classify asks the model for the sensitive-topic flag, business
// category and candidate discovery queries. The response is parsed
// defensively; malformed output surfaces as an error the caller
// degrades on.
func (o *OllamaReasoner) Classify(ctx context.Context, sum domain.BusinessSummary) (*domain.Classification, error) {
	payload, err := json.Marshal(sum)
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}

	response, err := o.chat(ctx, classifySystemPrompt, "Classify this website:\n"+string(payload))
	if err != nil {
		return nil, fmt.Errorf("ollama classify: %w", err)
	}

	cls, err := parseClassification(response)
	if err != nil {
		return nil, fmt.Errorf("ollama classify decode: %w", err)
	}
	return cls, nil
}

const synthesizeSystemPrompt = `You are a search and AI-visibility consultant writing for a site owner. Using ONLY the audit data provided, write a Markdown report with these sections:
## Overall Readiness
## How You Compare
## What Is Holding You Back
## Recommended Next Steps
Reference the actual scores, competitors and issues from the data. Be specific and concise; do not invent pages or metrics that are not in the data.`

// Synthesize produces the narrative report text from the reduced audit
// context.
func (o *OllamaReasoner) Synthesize(ctx context.Context, rc domain.ReportContext) (string, error) {
	payload, err := json.Marshal(rc)
	if err != nil {
		return "", fmt.Errorf("marshal report context: %w", err)
	}

	response, err := o.chat(ctx, synthesizeSystemPrompt, "Audit data:\n"+string(payload))
	if err != nil {
		return "", fmt.Errorf("ollama synthesize: %w", err)
	}
	if strings.TrimSpace(response) == "" {
		return "", port.ErrEmptyResponse
	}
	return response, nil
}

// chat sends a single non-streaming chat request.
func (o *OllamaReasoner) chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []map[string]string{
		{"role": "system", "content": systemPrompt},
		{"role": "user", "content": userPrompt},
	}

	payload := map[string]interface{}{
		"model":    o.cfg.Model,
		"messages": messages,
		"stream":   false,
	}

	body, err := o.post(ctx, "/api/chat", payload)
	if err != nil {
		return "", err
	}

	var resp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	return resp.Message.Content, nil
}

// parseClassification extracts the JSON object from a model response
// that may be wrapped in markdown fences or surrounding prose.
func parseClassification(response string) (*domain.Classification, error) {
	raw := strings.TrimSpace(response)
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}

	var parsed struct {
		Sensitive bool     `json:"sensitive"`
		Category  string   `json:"category"`
		Queries   []string `json:"queries"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, err
	}
	if parsed.Category == "" {
		parsed.Category = domain.CategoryUnknown
	}

	queries := make([]string, 0, len(parsed.Queries))
	for _, q := range parsed.Queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		queries = append(queries, q)
		if len(queries) == 10 {
			break
		}
	}

	return &domain.Classification{
		Sensitive: parsed.Sensitive,
		Category:  parsed.Category,
		Queries:   queries,
	}, nil
}

// post is a helper for POST requests to the Ollama endpoint (with
// optional bearer token).
func (o *OllamaReasoner) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BaseURL+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+o.cfg.Token)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
