// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/pathway-engine/internal/httputil"
	"github.com/pdiddy/pathway-engine/pkg/types"
)

// tavilyAPIURL is the Tavily search endpoint. Declared as a var so tests can
// substitute an httptest server.
var tavilyAPIURL = "https://api.tavily.com/search"

// TavilySearcher queries the Tavily Search API.
type TavilySearcher struct {
	Client *http.Client
	APIKey string
	Config types.SearchConfig
}

// NewTavilySearcher returns a searcher authenticated with apiKey.
func NewTavilySearcher(apiKey string, cfg types.SearchConfig) (*TavilySearcher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("tavily: API key is empty")
	}
	return &TavilySearcher{
		Client: &http.Client{Timeout: cfg.Timeout},
		APIKey: apiKey,
		Config: cfg,
	}, nil
}

// Retrieve runs one search and converts each hit into a document whose
// text is the result content and whose source is the result URL.
func (t *TavilySearcher) Retrieve(ctx context.Context, query string, k int) ([]types.RetrievedDocument, error) {
	depth := t.Config.SearchDepth
	if depth == "" {
		depth = "basic"
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:      t.APIKey,
		Query:       query,
		MaxResults:  k,
		SearchDepth: depth,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyAPIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.APIKey)
	if t.Config.UserAgent != "" {
		req.Header.Set("User-Agent", t.Config.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, t.Client, req, t.Config.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("Tavily API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("Tavily API returned HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var tr tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("parsing Tavily response: %w", err)
	}

	docs := make([]types.RetrievedDocument, 0, len(tr.Results))
	for _, r := range tr.Results {
		docs = append(docs, types.RetrievedDocument{Text: r.Content, SourceURL: r.URL})
	}
	if k > 0 && len(docs) > k {
		docs = docs[:k]
	}
	return docs, nil
}

// Tavily API JSON structures.
type tavilyRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type tavilyResponse struct {
	Query   string         `json:"query"`
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}
