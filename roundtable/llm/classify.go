package llm

import (
	"context"
	"errors"
	"net"
	"net/http"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/contract"
)

// classify maps a transport or API error onto the call-failure taxonomy the
// conductor records in the transcript.
func classify(err error) *contractx.CallFailure {
	var apierr *openaisdk.Error
	if errors.As(err, &apierr) {
		return &contractx.CallFailure{
			Kind:    kindForStatus(apierr.StatusCode),
			Message: apierr.Error(),
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &contractx.CallFailure{
			Kind:    contractx.FailureTimeout,
			Message: "model call timed out",
		}
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return &contractx.CallFailure{
			Kind:    contractx.FailureTimeout,
			Message: nerr.Error(),
		}
	}

	return &contractx.CallFailure{
		Kind:    contractx.FailureUnknown,
		Message: err.Error(),
	}
}

func kindForStatus(status int) contractx.FailureKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return contractx.FailureAuth
	case http.StatusTooManyRequests:
		return contractx.FailureRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return contractx.FailureTimeout
	default:
		return contractx.FailureUnknown
	}
}
