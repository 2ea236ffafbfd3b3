// Package registry holds the ordered, immutable set of participants for one
// discussion. Iteration order is the contract for reproducible transcripts:
// later participants see earlier participants' same-round output.
package registry

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/contract"
)

// Entry pairs a participant definition with the client that speaks for it.
type Entry struct {
	Participant contractx.Participant
	Client      contractx.ModelClient
}

type Registry struct {
	entries []Entry
}

func New(entries []Entry) (*Registry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no participants configured", contractx.ErrConfiguration)
	}

	for i, e := range entries {
		if strings.TrimSpace(e.Participant.Model) == "" {
			return nil, fmt.Errorf("%w: participant %d has no model identifier", contractx.ErrConfiguration, i+1)
		}
		if strings.TrimSpace(e.Participant.BaseURL) == "" {
			return nil, fmt.Errorf("%w: participant %d has no endpoint", contractx.ErrConfiguration, i+1)
		}
		if strings.TrimSpace(e.Participant.APIKey) == "" {
			return nil, fmt.Errorf("%w: participant %d has no credential", contractx.ErrConfiguration, i+1)
		}
		if e.Client == nil {
			return nil, fmt.Errorf("%w: participant %d has no model client", contractx.ErrConfiguration, i+1)
		}
	}

	r := &Registry{entries: make([]Entry, len(entries))}
	copy(r.entries, entries)

	for i := range r.entries {
		if strings.TrimSpace(r.entries[i].Participant.Label) == "" {
			r.entries[i].Participant.Label = fmt.Sprintf("Participant %d", i+1)
		}
	}

	return r, nil
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// Entries returns a copy; callers cannot mutate registry order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Participants returns the participant definitions in registry order.
func (r *Registry) Participants() []contractx.Participant {
	out := make([]contractx.Participant, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Participant
	}
	return out
}
