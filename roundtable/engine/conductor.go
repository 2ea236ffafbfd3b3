// Package engine drives a roundtable discussion: it dispatches each
// participant in registry order, accumulates the transcript round by round,
// isolates per-call failures, and optionally closes with moderator synthesis.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/contract"
	promptx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/prompt"
	registryx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/registry"
)

const defaultCallTimeout = 60 * time.Second

// Progress is invoked after every resolved contribution, in transcript order.
type Progress func(round int, c contractx.Contribution)

// Conductor owns the Discussion record for the duration of one run. It is
// the single writer; every other component sees read-only state. A conductor
// runs exactly once.
type Conductor struct {
	registry      *registryx.Registry
	moderator     contractx.ModelClient
	moderatorTemp float64
	maxRounds     int
	callTimeout   time.Duration
	toolNotes     []string
	progress      Progress
	now           func() time.Time

	mu    sync.Mutex
	state contractx.State
}

type Option func(*Conductor)

// WithModerator enables the synthesis pass after the final round.
func WithModerator(client contractx.ModelClient, temperature float64) Option {
	return func(c *Conductor) {
		c.moderator = client
		c.moderatorTemp = temperature
	}
}

// WithCallTimeout bounds every individual model call so one unresponsive
// endpoint cannot stall the discussion.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Conductor) {
		if d > 0 {
			c.callTimeout = d
		}
	}
}

// WithToolDescriptions advertises the available knowledge tools in every
// participant prompt.
func WithToolDescriptions(lines []string) Option {
	return func(c *Conductor) { c.toolNotes = lines }
}

func WithProgress(fn Progress) Option {
	return func(c *Conductor) { c.progress = fn }
}

func New(reg *registryx.Registry, maxRounds int, opts ...Option) (*Conductor, error) {
	if reg == nil || reg.Len() == 0 {
		return nil, fmt.Errorf("%w: participant registry is empty", contractx.ErrConfiguration)
	}
	if maxRounds < 1 {
		return nil, fmt.Errorf("%w: max rounds must be >= 1, got %d", contractx.ErrConfiguration, maxRounds)
	}

	c := &Conductor{
		registry:    reg,
		maxRounds:   maxRounds,
		callTimeout: defaultCallTimeout,
		now:         time.Now,
		state:       contractx.StateIdle,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *Conductor) State() contractx.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Conductor) setState(s contractx.State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Run conducts the full discussion. On cancellation the partial discussion is
// returned together with ErrCancelled; every other per-call failure is
// recorded in the transcript and surfaced as a warning, never as an error.
func (c *Conductor) Run(ctx context.Context, question string, files []contractx.FileRecord) (*contractx.Discussion, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", contractx.ErrConfiguration)
	}
	if err := c.begin(); err != nil {
		return nil, err
	}

	d := &contractx.Discussion{
		ID:        uuid.NewString(),
		Question:  question,
		Files:     files,
		StartedAt: c.now().UTC(),
	}
	builder := promptx.NewBuilder(files, promptx.WithToolDescriptions(c.toolNotes))
	entries := c.registry.Entries()

	for round := 1; round <= c.maxRounds; round++ {
		current := make([]contractx.Contribution, 0, len(entries))

		for _, entry := range entries {
			if ctx.Err() != nil {
				d.Rounds = appendPartialRound(d.Rounds, round, current)
				return c.cancel(d, ctx.Err())
			}

			p := builder.Participant(question, round, d.Rounds, current)
			contrib := c.dispatch(ctx, d, round, entry, p)
			current = append(current, contrib)
			if c.progress != nil {
				c.progress(round, contrib)
			}
		}

		d.Rounds = append(d.Rounds, contractx.RoundEntry{Round: round, Contributions: current})
	}

	if c.moderator != nil {
		c.setState(contractx.StateSynthesizing)
		if ctx.Err() != nil {
			return c.cancel(d, ctx.Err())
		}
		c.synthesize(ctx, d, builder)
	}

	c.setState(contractx.StateComplete)
	d.FinishedAt = c.now().UTC()
	return d, nil
}

func (c *Conductor) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != contractx.StateIdle {
		return contractx.ErrAlreadyRun
	}
	c.state = contractx.StateRunning
	return nil
}

func (c *Conductor) dispatch(
	ctx context.Context,
	d *contractx.Discussion,
	round int,
	entry registryx.Entry,
	p contractx.Prompt,
) contractx.Contribution {
	contrib := contractx.Contribution{
		Participant: entry.Participant.Label,
		Model:       entry.Participant.Model,
	}

	text, err := c.invoke(ctx, entry.Client, p, entry.Participant.Temperature)
	if err != nil {
		failure := asFailure(err)
		contrib.Failure = failure
		d.Warnings = append(d.Warnings, contractx.Warning{
			Kind:        contractx.WarnParticipantCall,
			Participant: entry.Participant.Label,
			Round:       round,
			Message:     failure.Error(),
		})
		log.Warn().
			Int("round", round).
			Str("participant", entry.Participant.Label).
			Str("model", entry.Participant.Model).
			Str("kind", string(failure.Kind)).
			Msg("participant call failed")
		return contrib
	}

	contrib.Text = text
	log.Debug().
		Int("round", round).
		Str("participant", entry.Participant.Label).
		Int("chars", len(text)).
		Msg("participant responded")
	return contrib
}

func (c *Conductor) synthesize(ctx context.Context, d *contractx.Discussion, builder promptx.Builder) {
	p := builder.Moderator(d.Question, d.Rounds)
	text, err := c.invoke(ctx, c.moderator, p, c.moderatorTemp)
	if err != nil {
		failure := asFailure(err)
		d.Warnings = append(d.Warnings, contractx.Warning{
			Kind:    contractx.WarnSynthesis,
			Message: failure.Error(),
		})
		log.Warn().Str("kind", string(failure.Kind)).Msg("moderator synthesis failed")
		return
	}
	d.FinalSummary = text
}

func (c *Conductor) invoke(
	ctx context.Context,
	client contractx.ModelClient,
	p contractx.Prompt,
	temperature float64,
) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	return client.Invoke(callCtx, p, temperature)
}

func (c *Conductor) cancel(d *contractx.Discussion, cause error) (*contractx.Discussion, error) {
	c.setState(contractx.StateCancelled)
	d.FinishedAt = c.now().UTC()
	log.Warn().Int("rounds_recorded", len(d.Rounds)).Msg("discussion cancelled")
	return d, fmt.Errorf("%w: %v", contractx.ErrCancelled, cause)
}

// appendPartialRound keeps contributions resolved before a cancellation so
// the retained transcript matches what participants actually saw.
func appendPartialRound(rounds []contractx.RoundEntry, round int, current []contractx.Contribution) []contractx.RoundEntry {
	if len(current) == 0 {
		return rounds
	}
	return append(rounds, contractx.RoundEntry{Round: round, Contributions: current})
}

func asFailure(err error) *contractx.CallFailure {
	var failure *contractx.CallFailure
	if errors.As(err, &failure) {
		return failure
	}
	return &contractx.CallFailure{
		Kind:    contractx.FailureUnknown,
		Message: err.Error(),
	}
}
