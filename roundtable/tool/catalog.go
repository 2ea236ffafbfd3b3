// Package tool provides the optional external knowledge tools participants
// may call during a discussion: web search, encyclopedia summaries, and
// academic paper lookup. The catalog only lists tools that are usable with
// the current configuration.
package tool

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Config struct {
	TavilyAPIKey string        `envconfig:"TAVILY_API_KEY"`
	Timeout      time.Duration `envconfig:"TOOL_TIMEOUT" split_words:"true" default:"15s"`
}

// Tool is one callable knowledge source. Parameters is the JSON schema
// advertised to the model for function calling.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Run         func(ctx context.Context, args map[string]any) (string, error)
}

type Catalog struct {
	tools      []Tool
	httpClient *http.Client

	tavilyEndpoint    string
	wikipediaEndpoint string
	arxivEndpoint     string
	tavilyAPIKey      string
}

type CatalogOption func(*Catalog)

func WithHTTPClient(client *http.Client) CatalogOption {
	return func(c *Catalog) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithTavilyEndpoint(u string) CatalogOption {
	return func(c *Catalog) { c.tavilyEndpoint = strings.TrimRight(u, "/") }
}

func WithWikipediaEndpoint(u string) CatalogOption {
	return func(c *Catalog) { c.wikipediaEndpoint = strings.TrimRight(u, "/") }
}

func WithArxivEndpoint(u string) CatalogOption {
	return func(c *Catalog) { c.arxivEndpoint = strings.TrimRight(u, "/") }
}

func NewCatalog(cfg Config, opts ...CatalogOption) *Catalog {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Catalog{
		httpClient:        &http.Client{Timeout: timeout},
		tavilyEndpoint:    defaultTavilyEndpoint,
		wikipediaEndpoint: defaultWikipediaEndpoint,
		arxivEndpoint:     defaultArxivEndpoint,
		tavilyAPIKey:      strings.TrimSpace(cfg.TavilyAPIKey),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.tavilyAPIKey != "" {
		c.tools = append(c.tools, c.tavilyTool())
	}
	c.tools = append(c.tools, c.wikipediaTool(), c.arxivTool())

	return c
}

func (c *Catalog) Len() int {
	return len(c.tools)
}

func (c *Catalog) Tools() []Tool {
	out := make([]Tool, len(c.tools))
	copy(out, c.tools)
	return out
}

func (c *Catalog) Lookup(name string) (Tool, bool) {
	for _, t := range c.tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

// Descriptions returns one "name: description" line per available tool, for
// injection into the participant system prompt.
func (c *Catalog) Descriptions() []string {
	out := make([]string, 0, len(c.tools))
	for _, t := range c.tools {
		out = append(out, fmt.Sprintf("%s: %s", t.Name, t.Description))
	}
	return out
}

// Execute runs the named tool. Unknown tools and tool failures are returned
// as errors; the model client converts them to tool-visible error text so a
// bad lookup never fails the participant call.
func (c *Catalog) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	t, ok := c.Lookup(name)
	if !ok {
		return "", fmt.Errorf("tool %q is not available", name)
	}
	return t.Run(ctx, args)
}

func queryArg(args map[string]any) (string, error) {
	raw, ok := args["query"]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", "query")
	}
	q, ok := raw.(string)
	if !ok || strings.TrimSpace(q) == "" {
		return "", fmt.Errorf("argument %q must be a non-empty string", "query")
	}
	return strings.TrimSpace(q), nil
}

func queryParameters(desc string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": desc,
			},
		},
		"required": []string{"query"},
	}
}
