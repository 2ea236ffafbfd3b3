package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/contract"
	toolx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/tool"
)

func participantFor(srv *httptest.Server) contractx.Participant {
	return contractx.Participant{
		Label:       "P1",
		Model:       "test-model",
		BaseURL:     srv.URL,
		APIKey:      "test-key",
		Temperature: 0.7,
	}
}

func completionBody(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 0,
		"model":   "test-model",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
	}
}

func TestInvokeReturnsText(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["model"] != "test-model" {
			t.Errorf("unexpected model %v", req["model"])
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionBody("  a considered answer  "))
	}))
	defer srv.Close()

	c, err := NewClient(participantFor(srv))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	got, err := c.Invoke(context.Background(), contractx.Prompt{System: "s", User: "u"}, 0.7)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got != "a considered answer" {
		t.Fatalf("expected trimmed content, got %q", got)
	}
}

func TestInvokeAuthFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	c, err := NewClient(participantFor(srv))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = c.Invoke(context.Background(), contractx.Prompt{User: "u"}, 0.7)
	var failure *contractx.CallFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected CallFailure, got %v", err)
	}
	if failure.Kind != contractx.FailureAuth {
		t.Fatalf("expected auth_error, got %s", failure.Kind)
	}
}

func TestInvokeEmptyContent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionBody("   "))
	}))
	defer srv.Close()

	c, err := NewClient(participantFor(srv))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = c.Invoke(context.Background(), contractx.Prompt{User: "u"}, 0.7)
	var failure *contractx.CallFailure
	if !errors.As(err, &failure) || failure.Kind != contractx.FailureInvalidResponse {
		t.Fatalf("expected invalid_response, got %v", err)
	}
}

func TestInvokeNoChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "chatcmpl-1", "object": "chat.completion", "created": 0,
			"model": "test-model", "choices": []any{},
		})
	}))
	defer srv.Close()

	c, err := NewClient(participantFor(srv))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = c.Invoke(context.Background(), contractx.Prompt{User: "u"}, 0.7)
	var failure *contractx.CallFailure
	if !errors.As(err, &failure) || failure.Kind != contractx.FailureInvalidResponse {
		t.Fatalf("expected invalid_response, got %v", err)
	}
}

func TestInvokeRunsToolLoop(t *testing.T) {
	t.Parallel()

	wiki := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"title": "Go", "extract": "A statically typed language.",
		})
	}))
	defer wiki.Close()

	var calls int
	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		switch calls {
		case 1:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "chatcmpl-1", "object": "chat.completion", "created": 0,
				"model": "test-model",
				"choices": []map[string]any{{
					"index": 0, "finish_reason": "tool_calls",
					"message": map[string]any{
						"role":    "assistant",
						"content": "",
						"tool_calls": []map[string]any{{
							"id":   "call_1",
							"type": "function",
							"function": map[string]any{
								"name":      "wikipedia_lookup",
								"arguments": `{"query": "Go"}`,
							},
						}},
					},
				}},
			})
		case 2:
			var req struct {
				Messages []struct {
					Role       string `json:"role"`
					Content    any    `json:"content"`
					ToolCallID string `json:"tool_call_id"`
				} `json:"messages"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode second request: %v", err)
			}
			last := req.Messages[len(req.Messages)-1]
			if last.Role != "tool" || last.ToolCallID != "call_1" {
				t.Errorf("expected trailing tool message, got %+v", last)
			}
			_ = json.NewEncoder(w).Encode(completionBody("Go is statically typed."))
		default:
			t.Errorf("unexpected extra model call %d", calls)
		}
	}))
	defer model.Close()

	catalog := toolx.NewCatalog(toolx.Config{},
		toolx.WithWikipediaEndpoint(wiki.URL),
		toolx.WithHTTPClient(wiki.Client()))

	c, err := NewClient(participantFor(model), WithCatalog(catalog))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	got, err := c.Invoke(context.Background(), contractx.Prompt{User: "what is go"}, 0.7)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got != "Go is statically typed." {
		t.Fatalf("unexpected final text %q", got)
	}
	if calls != 2 {
		t.Fatalf("expected 2 model calls, got %d", calls)
	}
}

func TestInvokeToolLoopIsBounded(t *testing.T) {
	t.Parallel()

	var calls int
	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		// Always demand another tool call; content carries the escape hatch.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "chatcmpl-1", "object": "chat.completion", "created": 0,
			"model": "test-model",
			"choices": []map[string]any{{
				"index": 0, "finish_reason": "tool_calls",
				"message": map[string]any{
					"role":    "assistant",
					"content": fmt.Sprintf("partial thought %d", calls),
					"tool_calls": []map[string]any{{
						"id":   fmt.Sprintf("call_%d", calls),
						"type": "function",
						"function": map[string]any{
							"name":      "missing_tool",
							"arguments": `{"query": "q"}`,
						},
					}},
				},
			}},
		})
	}))
	defer model.Close()

	catalog := toolx.NewCatalog(toolx.Config{})
	c, err := NewClient(participantFor(model), WithCatalog(catalog), WithMaxToolRounds(2))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	got, err := c.Invoke(context.Background(), contractx.Prompt{User: "u"}, 0.7)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	// After the bound is hit the last content is accepted as the answer.
	if got != "partial thought 3" {
		t.Fatalf("unexpected final text %q", got)
	}
	if calls != 3 {
		t.Fatalf("expected the loop to stop after 3 calls, got %d", calls)
	}
}
