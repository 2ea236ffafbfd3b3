package llm

import (
	"fmt"
	"os"
	"strings"
	"time"

	openaicompatx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/pkg/openaicompat"
	contractx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/contract"
)

// Moderator synthesis wants consistency over creativity.
const defaultModeratorTemperature = 0.3

// Config holds the fallback and moderator endpoint definitions. Participants
// are defined by numbered variables (MODEL1/API_KEY1/BASE_URL1/LABEL1,
// MODEL2/...) read by Participants; numbering stops at the first gap.
type Config struct {
	DefaultModel   string `envconfig:"DEFAULT_MODEL"`
	DefaultAPIKey  string `envconfig:"DEFAULT_API_KEY"`
	DefaultBaseURL string `envconfig:"DEFAULT_BASE_URL"`

	ModeratorModel   string `envconfig:"MODERATOR_MODEL"`
	ModeratorAPIKey  string `envconfig:"MODERATOR_API_KEY"`
	ModeratorBaseURL string `envconfig:"MODERATOR_BASE_URL"`

	CallTimeout time.Duration `envconfig:"CALL_TIMEOUT" default:"60s"`
}

// Participants reads the numbered participant definitions in order. lookup
// defaults to os.Getenv; tests inject their own. When no numbered entries
// exist, the DEFAULT_* endpoint is used as a single participant, degenerating
// to self-consistent iterative refinement.
func (c Config) Participants(temperature float64, lookup func(string) string) []contractx.Participant {
	if lookup == nil {
		lookup = os.Getenv
	}

	var out []contractx.Participant
	for i := 1; ; i++ {
		model := strings.TrimSpace(lookup(fmt.Sprintf("MODEL%d", i)))
		apiKey := strings.TrimSpace(lookup(fmt.Sprintf("API_KEY%d", i)))
		if model == "" || apiKey == "" {
			break
		}

		baseURL := strings.TrimSpace(lookup(fmt.Sprintf("BASE_URL%d", i)))
		if baseURL == "" {
			baseURL = openaicompatx.DefaultBaseURL
		}
		label := strings.TrimSpace(lookup(fmt.Sprintf("LABEL%d", i)))
		if label == "" {
			label = fmt.Sprintf("Participant %d", i)
		}

		out = append(out, contractx.Participant{
			Label:       label,
			Model:       model,
			BaseURL:     baseURL,
			APIKey:      apiKey,
			Temperature: temperature,
		})
	}

	if len(out) == 0 {
		if model, key := strings.TrimSpace(c.DefaultModel), strings.TrimSpace(c.DefaultAPIKey); model != "" && key != "" {
			out = append(out, contractx.Participant{
				Label:       "Participant 1",
				Model:       model,
				BaseURL:     c.defaultBaseURL(),
				APIKey:      key,
				Temperature: temperature,
			})
		}
	}

	return out
}

// Moderator returns the moderator definition, falling back to the DEFAULT_*
// endpoint when no dedicated moderator is configured. The second return is
// false when neither is usable.
func (c Config) Moderator() (contractx.Participant, bool) {
	model := strings.TrimSpace(c.ModeratorModel)
	apiKey := strings.TrimSpace(c.ModeratorAPIKey)
	baseURL := strings.TrimSpace(c.ModeratorBaseURL)

	if model == "" || apiKey == "" {
		model = strings.TrimSpace(c.DefaultModel)
		apiKey = strings.TrimSpace(c.DefaultAPIKey)
		baseURL = c.defaultBaseURL()
	}
	if model == "" || apiKey == "" {
		return contractx.Participant{}, false
	}
	if baseURL == "" {
		baseURL = openaicompatx.DefaultBaseURL
	}

	return contractx.Participant{
		Label:       "Moderator",
		Model:       model,
		BaseURL:     baseURL,
		APIKey:      apiKey,
		Temperature: defaultModeratorTemperature,
	}, true
}

func (c Config) defaultBaseURL() string {
	if v := strings.TrimSpace(c.DefaultBaseURL); v != "" {
		return v
	}
	return openaicompatx.DefaultBaseURL
}
