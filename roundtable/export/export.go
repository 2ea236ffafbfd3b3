// Package export renders a completed discussion into a document. Rendering
// is a pure data-to-text transformation over the read-only record.
package export

import (
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/contract"
)

type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatText     Format = "text"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatMarkdown:
		return FormatMarkdown, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatText:
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (markdown, json, text)", s)
	}
}

func Render(d *contractx.Discussion, format Format) (string, error) {
	if d == nil {
		return "", fmt.Errorf("discussion is nil")
	}

	switch format {
	case FormatMarkdown:
		return renderMarkdown(d), nil
	case FormatJSON:
		return renderJSON(d)
	case FormatText:
		return renderText(d), nil
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
}

func renderMarkdown(d *contractx.Discussion) string {
	var sb strings.Builder
	sb.WriteString("# Roundtable Discussion\n\n")
	sb.WriteString("## Question\n\n")
	sb.WriteString(d.Question)
	sb.WriteString("\n\n## Discussion\n")

	for _, round := range d.Rounds {
		fmt.Fprintf(&sb, "\n### Round %d\n", round.Round)
		for _, c := range round.Contributions {
			fmt.Fprintf(&sb, "\n**%s** (%s):\n\n", c.Participant, c.Model)
			if c.Failed() {
				fmt.Fprintf(&sb, "_Did not respond (%s)._\n", c.Failure.Kind)
				continue
			}
			sb.WriteString(c.Text)
			sb.WriteString("\n")
		}
	}

	if d.FinalSummary != "" {
		sb.WriteString("\n## Final Summary\n\n")
		sb.WriteString(d.FinalSummary)
		sb.WriteString("\n")
	}

	if len(d.Warnings) > 0 {
		sb.WriteString("\n## Warnings\n\n")
		for _, w := range d.Warnings {
			fmt.Fprintf(&sb, "- [%s] %s\n", w.Kind, w.Message)
		}
	}

	return sb.String()
}

func renderJSON(d *contractx.Discussion) (string, error) {
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode discussion: %w", err)
	}
	return string(raw) + "\n", nil
}

func renderText(d *contractx.Discussion) string {
	divider := strings.Repeat("=", 80)

	var sb strings.Builder
	sb.WriteString("ROUNDTABLE DISCUSSION\n")
	sb.WriteString(divider)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(d.Question)
	sb.WriteString("\n")

	for _, round := range d.Rounds {
		fmt.Fprintf(&sb, "\n--- Round %d ---\n\n", round.Round)
		for _, c := range round.Contributions {
			fmt.Fprintf(&sb, "%s (%s):\n", c.Participant, c.Model)
			if c.Failed() {
				fmt.Fprintf(&sb, "[did not respond: %s]\n\n", c.Failure.Kind)
				continue
			}
			sb.WriteString(c.Text)
			sb.WriteString("\n\n")
		}
	}

	if d.FinalSummary != "" {
		divider := strings.Repeat("-", 80)
		sb.WriteString(divider)
		sb.WriteString("\nFINAL SUMMARY\n")
		sb.WriteString(divider)
		sb.WriteString("\n")
		sb.WriteString(d.FinalSummary)
		sb.WriteString("\n")
	}

	return sb.String()
}
