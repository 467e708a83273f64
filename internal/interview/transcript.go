package interview

import (
	"strings"

	"orgdiag/internal/llm"
)

// Speaker labels used in rendered transcripts.
const (
	SpeakerStakeholder = "Stakeholder"
	SpeakerConsultant  = "Consultant"
)

func speaker(r llm.Role) string {
	if r == llm.RoleUser {
		return SpeakerStakeholder
	}
	return SpeakerConsultant
}

// RenderTranscript flattens a turn history into "<Speaker>: <text>" lines
// separated by a blank line, in chronological order.
func RenderTranscript(history []llm.Turn) string {
	lines := make([]string, 0, len(history))
	for _, t := range history {
		lines = append(lines, speaker(t.Role)+": "+t.Text)
	}
	return strings.Join(lines, "\n\n")
}
