package prompt

import (
	"fmt"
	"strings"

	"orgdiag/internal/project"
)

// BlockSeparator ends every stakeholder block in the synthesis prompt.
const BlockSeparator = "---"

// StakeholderBlock renders one completed interview for the synthesis prompt.
func StakeholderBlock(sh project.Stakeholder, st project.State) string {
	sc := Resolve(sh, st)
	return fmt.Sprintf("STAKEHOLDER: %s (Units: %s, Geos: %s)\nTRANSCRIPT:\n%s\n%s",
		sh.Name,
		strings.Join(sc.Units, ", "),
		strings.Join(sc.Geos, ", "),
		sh.Transcript,
		BlockSeparator,
	)
}

// BuildSynthesisPrompt renders the problem statement and every completed
// interview into one prompt. Pending stakeholders are left out.
func BuildSynthesisPrompt(st project.State) string {
	var blocks []string
	for _, sh := range st.Completed() {
		blocks = append(blocks, StakeholderBlock(sh, st))
	}

	var buf strings.Builder
	writeSection(&buf, "PURPOSE", "Based on the following organizational problem and stakeholder interviews, generate a synthesis report.")
	writeSection(&buf, "PROBLEM STATEMENT", strings.TrimSpace(st.ProblemStatement))
	writeSection(&buf, "INTERVIEW DATA", strings.Join(blocks, "\n"))
	writeSection(&buf, "OUTPUT", formatList([]string{
		"executiveSummary (string, required): a short summary of the findings.",
		"hypotheses (array, required): hypotheses to test in follow-up in-person interviews.",
		"hypotheses[].title (string, required)",
		"hypotheses[].description (string, required)",
		"hypotheses[].confidence (number, required): 0 to 1 scale.",
		"hypotheses[].evidenceSource (array of string, required): stakeholder names backing the hypothesis.",
	}))
	writeSection(&buf, "OUTPUT_FORMAT", "JSON only.")
	return strings.TrimSpace(buf.String()) + "\n"
}
