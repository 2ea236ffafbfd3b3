package contract

import "time"

// Participant is one configured model endpoint taking part in a discussion.
// Immutable for the lifetime of the discussion.
type Participant struct {
	Label       string  `json:"label"`
	Model       string  `json:"model"`
	BaseURL     string  `json:"base_url"`
	APIKey      string  `json:"-"`
	Temperature float64 `json:"temperature"`
}

// FileRecord is one loaded document from the file corpus.
type FileRecord struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Content  string `json:"content"`
	Size     int    `json:"size"` // character count
}

type FailureKind string

const (
	FailureTimeout         FailureKind = "timeout"
	FailureAuth            FailureKind = "auth_error"
	FailureRateLimited     FailureKind = "rate_limited"
	FailureInvalidResponse FailureKind = "invalid_response"
	FailureUnknown         FailureKind = "unknown"
)

// CallFailure describes why a single model call produced no text.
// It is recorded in the transcript in place of the missing contribution.
type CallFailure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

func (f *CallFailure) Error() string {
	return string(f.Kind) + ": " + f.Message
}

// Contribution is one participant's resolved slot in a round: either text or
// a failure marker, never both.
type Contribution struct {
	Participant string       `json:"participant"`
	Model       string       `json:"model"`
	Text        string       `json:"text,omitempty"`
	Failure     *CallFailure `json:"failure,omitempty"`
}

func (c Contribution) Failed() bool {
	return c.Failure != nil
}

// RoundEntry holds every participant's resolved contribution for one round,
// in registry order.
type RoundEntry struct {
	Round         int            `json:"round"`
	Contributions []Contribution `json:"contributions"`
}

type WarningKind string

const (
	WarnParticipantCall WarningKind = "participant_call"
	WarnSynthesis       WarningKind = "synthesis"
	WarnFileLoad        WarningKind = "file_load"
	WarnTool            WarningKind = "tool"
)

// Warning is a recovered per-item failure surfaced on the run output.
type Warning struct {
	Kind        WarningKind `json:"kind"`
	Participant string      `json:"participant,omitempty"`
	Round       int         `json:"round,omitempty"`
	Message     string      `json:"message"`
}

// Discussion is the append-only record of a run. The conductor is the single
// writer; once the run finishes the record is read-only.
type Discussion struct {
	ID           string       `json:"id"`
	Question     string       `json:"question"`
	Rounds       []RoundEntry `json:"rounds"`
	FinalSummary string       `json:"final_summary,omitempty"`
	Files        []FileRecord `json:"files,omitempty"`
	Warnings     []Warning    `json:"warnings,omitempty"`
	StartedAt    time.Time    `json:"started_at"`
	FinishedAt   time.Time    `json:"finished_at"`
}

// State is the conductor lifecycle. Complete and Cancelled are terminal.
type State string

const (
	StateIdle         State = "idle"
	StateRunning      State = "running"
	StateSynthesizing State = "synthesizing"
	StateComplete     State = "complete"
	StateCancelled    State = "cancelled"
)
