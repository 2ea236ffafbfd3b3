package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/contract"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyAPIStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status int
		want   contractx.FailureKind
	}{
		{401, contractx.FailureAuth},
		{403, contractx.FailureAuth},
		{429, contractx.FailureRateLimited},
		{408, contractx.FailureTimeout},
		{504, contractx.FailureTimeout},
		{500, contractx.FailureUnknown},
	}
	for _, tc := range cases {
		err := &openaisdk.Error{
			StatusCode: tc.status,
			Request:    httptest.NewRequest(http.MethodPost, "https://api.example.com/v1/chat/completions", nil),
			Response:   &http.Response{StatusCode: tc.status},
		}
		if got := classify(err); got.Kind != tc.want {
			t.Fatalf("status %d: expected %s, got %s", tc.status, tc.want, got.Kind)
		}
	}
}

func TestClassifyDeadlineExceeded(t *testing.T) {
	t.Parallel()

	got := classify(fmt.Errorf("call: %w", context.DeadlineExceeded))
	if got.Kind != contractx.FailureTimeout {
		t.Fatalf("expected timeout, got %s", got.Kind)
	}
}

func TestClassifyNetTimeout(t *testing.T) {
	t.Parallel()

	got := classify(fmt.Errorf("dial: %w", timeoutErr{}))
	if got.Kind != contractx.FailureTimeout {
		t.Fatalf("expected timeout, got %s", got.Kind)
	}
}

func TestClassifyUnknown(t *testing.T) {
	t.Parallel()

	got := classify(errors.New("connection reset"))
	if got.Kind != contractx.FailureUnknown {
		t.Fatalf("expected unknown, got %s", got.Kind)
	}
	if got.Message != "connection reset" {
		t.Fatalf("original message must survive, got %q", got.Message)
	}
}

func TestClassifyIsAnError(t *testing.T) {
	t.Parallel()

	var failure *contractx.CallFailure
	err := error(classify(errors.New("boom")))
	if !errors.As(err, &failure) {
		t.Fatal("classified failure must unwrap via errors.As")
	}
}
