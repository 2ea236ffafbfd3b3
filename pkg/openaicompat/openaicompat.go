// Package openaicompat builds openai-go SDK clients for any
// OpenAI-compatible chat-completions endpoint (OpenAI, OpenRouter, Friendli,
// local servers, ...).
package openaicompat

import (
	"errors"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const DefaultBaseURL = "https://api.openai.com/v1"

type Config struct {
	BaseURL string
	APIKey  string
}

// New creates an SDK client for the configured endpoint. The SDK's own
// per-request retry handling is disabled for rate limits so the caller sees
// 429s and can classify them.
func New(cfg Config) (*openaisdk.Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := openaisdk.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	)
	return &client, nil
}
