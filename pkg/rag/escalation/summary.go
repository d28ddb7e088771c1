package escalation

import (
	"fmt"
	"strings"

	"aura-support-be/internal/entity"
)

// BuildTranscriptSummary renders the plain-text hand-off summary sent to
// human agents.
func BuildTranscriptSummary(sessionID string, turns []entity.Turn) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Session: %s\n", sessionID)
	fmt.Fprintf(&sb, "Turns: %d\n", len(turns))

	if n := len(turns); n > 0 {
		last := turns[n-1]
		fmt.Fprintf(&sb, "Escalation: %s (%s)\n", last.Escalation, last.Reason)
	}
	sb.WriteString("\n")

	for i, t := range turns {
		fmt.Fprintf(&sb, "#%d %s\n", i+1, t.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(&sb, "Customer: %s\n", t.UserMessage)
		fmt.Fprintf(&sb, "Agent: %s\n", t.Reply)
		if len(t.ChunkIds) > 0 {
			fmt.Fprintf(&sb, "Sources: %s\n", strings.Join(t.ChunkIds, ", "))
		}
		if t.Escalation != "" && t.Escalation != entity.EscalationNone {
			fmt.Fprintf(&sb, "Flag: %s %s\n", t.Escalation, t.Reason)
		}
		if t.Degraded {
			sb.WriteString("Note: reply was a fallback apology\n")
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
