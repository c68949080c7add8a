// Package search wraps the Tavily web search API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the hosted Tavily endpoint.
const DefaultBaseURL = "https://api.tavily.com"

// Client communicates with the Tavily search HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	// Depth and IncludeRawContent apply to every query this client runs.
	Depth             string
	MaxResults        int
	IncludeRawContent bool
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Depth:             "advanced",
		MaxResults:        5,
		IncludeRawContent: true,
	}
}

type searchRequest struct {
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth,omitempty"`
	MaxResults        int    `json:"max_results,omitempty"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

// Search runs one query and returns the provider payload untyped. The
// response shape is not guaranteed by the provider, so interpretation is
// left to the result cleaner.
func (c *Client) Search(ctx context.Context, query string) (map[string]any, error) {
	body, err := json.Marshal(searchRequest{
		Query:             query,
		SearchDepth:       c.Depth,
		MaxResults:        c.MaxResults,
		IncludeRawContent: c.IncludeRawContent,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("search %q: status %d: %s", query, resp.StatusCode, string(respBody))
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return payload, nil
}

// Close releases any resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
