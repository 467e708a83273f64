package wizard

import (
	"strings"

	"orgdiag/internal/project"
)

// Nav is the wizard position. It is a value: transitions return a new Nav
// and a flag telling whether the move happened. A refused move returns the
// receiver unchanged.
type Nav struct {
	Step                Step   `json:"step"`
	ActiveStakeholderID string `json:"activeStakeholderId,omitempty"`
}

// Start is the initial position.
func Start() Nav { return Nav{Step: ProblemStatement} }

// InSession reports whether an interview session is active.
func (n Nav) InSession() bool { return n.Step == InterviewSession }

// SidebarStep is the sidebar item to highlight. A session counts as the hub.
func (n Nav) SidebarStep() Step {
	if n.Step == InterviewSession {
		return InterviewHub
	}
	return n.Step
}

// CanAdvance reports whether the forward action should be offered. For the
// problem statement this is advisory only; Next does not enforce it.
func (n Nav) CanAdvance(st project.State) bool {
	switch n.Step {
	case ProblemStatement:
		return st.HasProblemStatement()
	case StakeholderSetup:
		return st.HasStakeholders()
	case CompanyOverview, InterviewConfig:
		return true
	}
	return false
}

// Next advances along the linear setup steps.
func (n Nav) Next(st project.State) (Nav, bool) {
	switch n.Step {
	case ProblemStatement:
		return Nav{Step: CompanyOverview}, true
	case CompanyOverview:
		return Nav{Step: StakeholderSetup}, true
	case StakeholderSetup:
		if !st.HasStakeholders() {
			return n, false
		}
		return Nav{Step: InterviewConfig}, true
	case InterviewConfig:
		return Nav{Step: InterviewHub}, true
	}
	return n, false
}

// Back moves to the previous screen. Backing out of a session abandons it.
func (n Nav) Back() (Nav, bool) {
	switch n.Step {
	case CompanyOverview:
		return Nav{Step: ProblemStatement}, true
	case StakeholderSetup:
		return Nav{Step: CompanyOverview}, true
	case InterviewConfig:
		return Nav{Step: StakeholderSetup}, true
	case InterviewSession, SynthesisReport:
		return Nav{Step: InterviewHub}, true
	}
	return n, false
}

// NavigateTo handles a sidebar click. The hub needs a non-empty roster and
// the report needs enough completed interviews; refused clicks are no-ops.
func (n Nav) NavigateTo(target Step, st project.State) (Nav, bool) {
	if !inSidebar(target) {
		return n, false
	}
	switch target {
	case InterviewHub:
		if !st.HasStakeholders() {
			return n, false
		}
	case SynthesisReport:
		if !st.CanSynthesize() {
			return n, false
		}
	}
	if target == n.Step {
		return n, true
	}
	return Nav{Step: target}, true
}

// StartInterview enters a session for a pending stakeholder from the hub.
func (n Nav) StartInterview(stakeholderID string, st project.State) (Nav, bool) {
	if n.Step != InterviewHub || strings.TrimSpace(stakeholderID) == "" {
		return n, false
	}
	sh, ok := st.Stakeholder(stakeholderID)
	if !ok || sh.Completed() {
		return n, false
	}
	return Nav{Step: InterviewSession, ActiveStakeholderID: stakeholderID}, true
}

// LeaveSession returns to the hub after completion or cancellation.
func (n Nav) LeaveSession() (Nav, bool) {
	if n.Step != InterviewSession {
		return n, false
	}
	return Nav{Step: InterviewHub}, true
}

// OpenSynthesis moves from the hub to the report.
func (n Nav) OpenSynthesis(st project.State) (Nav, bool) {
	if n.Step != InterviewHub || !st.CanSynthesize() {
		return n, false
	}
	return Nav{Step: SynthesisReport}, true
}
