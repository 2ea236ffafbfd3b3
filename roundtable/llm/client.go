package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
	"github.com/rs/zerolog/log"

	openaicompatx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/pkg/openaicompat"
	contractx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/contract"
	toolx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/tool"
)

const defaultMaxToolRounds = 3

// Client is the openai-go backed ModelClient for one participant endpoint.
// When a tool catalog is attached, Invoke runs a bounded function-calling
// loop before returning the final text.
type Client struct {
	api           *openaisdk.Client
	model         string
	label         string
	catalog       *toolx.Catalog
	maxToolRounds int
}

var _ contractx.ModelClient = (*Client)(nil)

type ClientOption func(*Client)

func WithCatalog(catalog *toolx.Catalog) ClientOption {
	return func(c *Client) { c.catalog = catalog }
}

func WithMaxToolRounds(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxToolRounds = n
		}
	}
}

func NewClient(p contractx.Participant, opts ...ClientOption) (*Client, error) {
	api, err := openaicompatx.New(openaicompatx.Config{
		BaseURL: p.BaseURL,
		APIKey:  p.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: participant %q: %v", contractx.ErrConfiguration, p.Label, err)
	}

	c := &Client{
		api:           api,
		model:         p.Model,
		label:         p.Label,
		maxToolRounds: defaultMaxToolRounds,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *Client) Invoke(ctx context.Context, prompt contractx.Prompt, temperature float64) (string, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(prompt.System),
			openaisdk.UserMessage(prompt.User),
		},
		Temperature: openaisdk.Float(temperature),
	}
	if c.catalog != nil && c.catalog.Len() > 0 {
		params.Tools = c.toolParams()
	}

	for iteration := 0; ; iteration++ {
		completion, err := c.api.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", classify(err)
		}
		if len(completion.Choices) == 0 {
			return "", &contractx.CallFailure{
				Kind:    contractx.FailureInvalidResponse,
				Message: "model returned no choices",
			}
		}

		msg := completion.Choices[0].Message
		if len(msg.ToolCalls) > 0 && c.catalog != nil && iteration < c.maxToolRounds {
			params.Messages = append(params.Messages, msg.ToParam())
			for _, call := range msg.ToolCalls {
				params.Messages = append(params.Messages,
					openaisdk.ToolMessage(c.runTool(ctx, call), call.ID))
			}
			continue
		}

		text := strings.TrimSpace(msg.Content)
		if text == "" {
			return "", &contractx.CallFailure{
				Kind:    contractx.FailureInvalidResponse,
				Message: "model returned empty content",
			}
		}
		return text, nil
	}
}

func (c *Client) runTool(ctx context.Context, call openaisdk.ChatCompletionMessageToolCall) string {
	var args map[string]any
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return fmt.Sprintf("tool error: invalid arguments: %v", err)
		}
	}

	result, err := c.catalog.Execute(ctx, call.Function.Name, args)
	if err != nil {
		// Tool failures are surfaced to the model, never to the conductor.
		log.Warn().
			Str("participant", c.label).
			Str("tool", call.Function.Name).
			Err(err).
			Msg("tool execution failed")
		return fmt.Sprintf("tool error: %v", err)
	}
	return result
}

func (c *Client) toolParams() []openaisdk.ChatCompletionToolParam {
	tools := c.catalog.Tools()
	out := make([]openaisdk.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, openaisdk.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openaisdk.String(t.Description),
				Parameters:  shared.FunctionParameters(t.Parameters),
			},
		})
	}
	return out
}
