// Package prompt turns transcript state into the literal text sent to model
// endpoints. Building is a pure function of its inputs: identical transcript
// state and file context always produce byte-identical prompts.
package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/contract"
	corpusx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/corpus"
)

var (
	//go:embed template/participant.txt
	participantRaw string

	//go:embed template/moderator.txt
	moderatorRaw string
)

// Builder carries the per-discussion constants: the file-context block
// (computed once, reused across rounds) and optional tool descriptions
// appended to the participant system prompt.
type Builder struct {
	fileBlock string
	toolNotes string
}

type BuilderOption func(*Builder)

// WithToolDescriptions advertises external knowledge tools in the system
// prompt, one "name: description" line per tool.
func WithToolDescriptions(lines []string) BuilderOption {
	return func(b *Builder) {
		if len(lines) == 0 {
			return
		}
		var sb strings.Builder
		sb.WriteString("\n\nAvailable tools for research:\n")
		for _, line := range lines {
			sb.WriteString("- ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		b.toolNotes = sb.String()
	}
}

func NewBuilder(files []contractx.FileRecord, opts ...BuilderOption) Builder {
	b := Builder{fileBlock: corpusx.ContextBlock(files)}
	for _, opt := range opts {
		if opt != nil {
			opt(&b)
		}
	}
	return b
}

// Participant builds the prompt for one participant in round `round`.
// The participant sees the question, the file-context block if any, every
// completed round in chronological order, and the already-collected
// contributions of earlier participants in the current round. It never sees
// output of participants later in registry order.
func (b Builder) Participant(
	question string,
	round int,
	prior []contractx.RoundEntry,
	current []contractx.Contribution,
) contractx.Prompt {
	var sb strings.Builder
	sb.WriteString("We're discussing: ")
	sb.WriteString(question)
	sb.WriteString("\n\n")

	if b.fileBlock != "" {
		sb.WriteString("Reference material provided for this discussion:\n")
		sb.WriteString(b.fileBlock)
		sb.WriteString("\n")
	}

	transcript := renderTranscript(prior, round, current)
	if transcript != "" {
		sb.WriteString(fmt.Sprintf("This is Round %d. Here's what has been said so far:\n", round))
		sb.WriteString(transcript)
		sb.WriteString("\n")
		sb.WriteString("Please respond by:\n")
		sb.WriteString("1. Building on the strongest ideas\n")
		sb.WriteString("2. Adding new perspectives or addressing gaps\n")
		sb.WriteString("3. Helping move toward a conclusion\n\n")
		sb.WriteString("Keep it concise (2-4 sentences).")
	} else {
		sb.WriteString(fmt.Sprintf("This is Round %d. Please share your initial thoughts and insights. ", round))
		sb.WriteString("Be specific, insightful, and concise (2-4 sentences).")
	}

	return contractx.Prompt{
		System: strings.TrimSpace(participantRaw) + b.toolNotes,
		User:   sb.String(),
	}
}

// Moderator builds the synthesis prompt over the full transcript, failure
// markers included.
func (b Builder) Moderator(question string, rounds []contractx.RoundEntry) contractx.Prompt {
	var sb strings.Builder
	sb.WriteString("Question discussed: ")
	sb.WriteString(question)
	sb.WriteString("\n\nDiscussion:\n")
	sb.WriteString(renderTranscript(rounds, 0, nil))
	sb.WriteString("\nPlease provide a final summary of this roundtable discussion.")

	return contractx.Prompt{
		System: strings.TrimSpace(moderatorRaw),
		User:   sb.String(),
	}
}

func renderTranscript(prior []contractx.RoundEntry, currentRound int, current []contractx.Contribution) string {
	var sb strings.Builder

	for _, entry := range prior {
		writeRoundHeader(&sb, entry.Round)
		for _, c := range entry.Contributions {
			writeContribution(&sb, entry.Round, c)
		}
	}

	if len(current) > 0 {
		writeRoundHeader(&sb, currentRound)
		for _, c := range current {
			writeContribution(&sb, currentRound, c)
		}
	}

	return sb.String()
}

func writeRoundHeader(sb *strings.Builder, round int) {
	fmt.Fprintf(sb, "--- Round %d ---\n", round)
}

func writeContribution(sb *strings.Builder, round int, c contractx.Contribution) {
	if c.Failed() {
		fmt.Fprintf(sb, "%s did not respond in round %d.\n", c.Participant, round)
		return
	}
	fmt.Fprintf(sb, "%s: %s\n", c.Participant, strings.TrimSpace(c.Text))
}
