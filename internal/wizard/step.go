package wizard

import (
	"fmt"
	"strings"
)

// Step is one screen of the wizard.
type Step int

const (
	ProblemStatement Step = iota
	CompanyOverview
	StakeholderSetup
	InterviewConfig
	InterviewHub
	InterviewSession
	SynthesisReport
)

var stepNames = [...]string{
	ProblemStatement: "PROBLEM_STATEMENT",
	CompanyOverview:  "COMPANY_OVERVIEW",
	StakeholderSetup: "STAKEHOLDER_SETUP",
	InterviewConfig:  "INTERVIEW_CONFIG",
	InterviewHub:     "INTERVIEW_HUB",
	InterviewSession: "INTERVIEW_SESSION",
	SynthesisReport:  "SYNTHESIS_REPORT",
}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return fmt.Sprintf("STEP(%d)", int(s))
	}
	return stepNames[s]
}

func ParseStep(raw string) (Step, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	for i, name := range stepNames {
		if name == raw {
			return Step(i), nil
		}
	}
	return 0, fmt.Errorf("wizard: unknown step %q", raw)
}

func (s Step) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Step) UnmarshalText(b []byte) error {
	v, err := ParseStep(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// SidebarEntry is one navigable item of the sidebar.
type SidebarEntry struct {
	Step  Step   `json:"step"`
	Label string `json:"label"`
}

var sidebar = []SidebarEntry{
	{ProblemStatement, "Problem"},
	{CompanyOverview, "Organization"},
	{StakeholderSetup, "Stakeholders"},
	{InterviewConfig, "Bot Settings"},
	{InterviewHub, "Interviews"},
	{SynthesisReport, "Analysis"},
}

// Sidebar returns the sidebar entries in display order.
func Sidebar() []SidebarEntry {
	out := make([]SidebarEntry, len(sidebar))
	copy(out, sidebar)
	return out
}

func inSidebar(s Step) bool {
	for _, e := range sidebar {
		if e.Step == s {
			return true
		}
	}
	return false
}
