package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultTavilyEndpoint = "https://api.tavily.com"

const maxToolResponseBytes = 1 << 20

type tavilyRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

func (c *Catalog) tavilyTool() Tool {
	return Tool{
		Name: "web_search",
		Description: "Search the web for current information and recent news. " +
			"Use for up-to-date facts, current events, and real-time data.",
		Parameters: queryParameters("Search query"),
		Run:        c.runTavily,
	}
}

func (c *Catalog) runTavily(ctx context.Context, args map[string]any) (string, error) {
	query, err := queryArg(args)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(tavilyRequest{
		APIKey:      c.tavilyAPIKey,
		Query:       query,
		SearchDepth: "basic",
		MaxResults:  5,
	})
	if err != nil {
		return "", fmt.Errorf("encode search request: %w", err)
	}

	body, err := c.doRequest(ctx, http.MethodPost, c.tavilyEndpoint+"/search", payload)
	if err != nil {
		return "", err
	}

	var resp tavilyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}
	if len(resp.Results) == 0 {
		return fmt.Sprintf("No results found for: %s", query), nil
	}

	var sb strings.Builder
	for _, r := range resp.Results {
		fmt.Fprintf(&sb, "* %s\n  %s\n  Source: %s\n", r.Title, r.Content, r.URL)
	}
	return sb.String(), nil
}

func (c *Catalog) doRequest(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxToolResponseBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return raw, nil
}
