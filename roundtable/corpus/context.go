package corpus

import (
	"strings"

	contractx "github.com/tanpawarit/Roundtable-Multi-Agent-Discussion/roundtable/contract"
)

// ContextBlock renders the loaded corpus as one text block: a header naming
// each file followed by its full content, in load order. An empty corpus
// yields an empty string so prompts carry no file artifact at all. The block
// is computed once per discussion; file content never changes between rounds.
func ContextBlock(files []contractx.FileRecord) string {
	if len(files) == 0 {
		return ""
	}

	var b strings.Builder
	for i, f := range files {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("=== File: ")
		b.WriteString(f.Filename)
		b.WriteString(" ===\n")
		b.WriteString(strings.TrimRight(f.Content, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}
