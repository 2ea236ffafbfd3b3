package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const defaultWikipediaEndpoint = "https://en.wikipedia.org/api/rest_v1"

type wikipediaSummary struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	Type    string `json:"type"`
}

func (c *Catalog) wikipediaTool() Tool {
	return Tool{
		Name: "wikipedia_lookup",
		Description: "Get information from Wikipedia for general knowledge topics, " +
			"historical facts, and biographical information.",
		Parameters: queryParameters("Topic or person name"),
		Run:        c.runWikipedia,
	}
}

func (c *Catalog) runWikipedia(ctx context.Context, args map[string]any) (string, error) {
	query, err := queryArg(args)
	if err != nil {
		return "", err
	}

	title := url.PathEscape(strings.ReplaceAll(query, " ", "_"))
	endpoint := c.wikipediaEndpoint + "/page/summary/" + title

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Sprintf("Wikipedia page not found for: %s", query), nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from wikipedia", resp.StatusCode)
	}

	var summary wikipediaSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return "", fmt.Errorf("decode wikipedia response: %w", err)
	}
	if strings.TrimSpace(summary.Extract) == "" {
		return fmt.Sprintf("Wikipedia page not found for: %s", query), nil
	}

	return fmt.Sprintf("Wikipedia summary for %q:\n\n%s", summary.Title, summary.Extract), nil
}
