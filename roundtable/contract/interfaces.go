package contract

import "context"

// Prompt is the literal input for one model call.
type Prompt struct {
	System string
	User   string
}

// ModelClient is the single capability the conductor needs from a model
// endpoint. Implementations must honor ctx cancellation and deadlines; on
// failure they should return a *CallFailure so the conductor can record the
// failure kind.
type ModelClient interface {
	Invoke(ctx context.Context, prompt Prompt, temperature float64) (string, error)
}
