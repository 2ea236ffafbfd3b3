package tool

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

const defaultArxivEndpoint = "https://export.arxiv.org/api"

type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
	ID        string `xml:"id"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

func (c *Catalog) arxivTool() Tool {
	return Tool{
		Name: "arxiv_search",
		Description: "Search for academic papers and research on arXiv. " +
			"Use for scientific research, technical papers, and cutting-edge findings.",
		Parameters: queryParameters("Research topic or query"),
		Run:        c.runArxiv,
	}
}

func (c *Catalog) runArxiv(ctx context.Context, args map[string]any) (string, error) {
	query, err := queryArg(args)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", "3")
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	body, err := c.doRequest(ctx, http.MethodGet, c.arxivEndpoint+"/query?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	return formatArxivFeed(body, query)
}

func formatArxivFeed(raw []byte, query string) (string, error) {
	var feed arxivFeed
	if err := xml.Unmarshal(raw, &feed); err != nil {
		return "", fmt.Errorf("decode arxiv feed: %w", err)
	}
	if len(feed.Entries) == 0 {
		return fmt.Sprintf("No papers found on arXiv for: %s", query), nil
	}

	var sb strings.Builder
	for i, entry := range feed.Entries {
		authors := make([]string, 0, 3)
		for _, a := range entry.Authors {
			if len(authors) == 3 {
				break
			}
			authors = append(authors, a.Name)
		}

		summary := truncate(strings.Join(strings.Fields(entry.Summary), " "), 300)

		fmt.Fprintf(&sb, "%d. %s\n", i+1, strings.TrimSpace(entry.Title))
		fmt.Fprintf(&sb, "   Authors: %s\n", strings.Join(authors, ", "))
		if entry.Published != "" {
			fmt.Fprintf(&sb, "   Published: %s\n", entry.Published)
		}
		fmt.Fprintf(&sb, "   Summary: %s\n", summary)
		fmt.Fprintf(&sb, "   URL: %s\n", strings.TrimSpace(entry.ID))
	}
	return sb.String(), nil
}

// truncate caps s at max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
