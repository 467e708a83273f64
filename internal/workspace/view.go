package workspace

import (
	"orgdiag/internal/interview"
	"orgdiag/internal/project"
	"orgdiag/internal/synthesis"
	"orgdiag/internal/wizard"
)

// Gates reports which wizard affordances are enabled.
type Gates struct {
	CanAdvance      bool `json:"canAdvance"`
	HasStakeholders bool `json:"hasStakeholders"`
	CompletedCount  int  `json:"completedCount"`
	CanSynthesize   bool `json:"canSynthesize"`
}

// View is everything a client needs to draw the current screen.
type View struct {
	WorkspaceID         string                `json:"workspaceId"`
	State               project.State         `json:"state"`
	Step                wizard.Step           `json:"step"`
	SidebarStep         wizard.Step           `json:"sidebarStep"`
	Sidebar             []wizard.SidebarEntry `json:"sidebar"`
	ActiveStakeholderID string                `json:"activeStakeholderId,omitempty"`
	Gates               Gates                 `json:"gates"`
	Session             *interview.Snapshot   `json:"session,omitempty"`
	Synthesis           synthesis.Result      `json:"synthesis"`
	Moved               bool                  `json:"moved"`
}

// viewLocked builds a view. Caller holds w.mu.
func (w *Workspace) viewLocked() View {
	st := w.state.Clone()
	if id := w.nav.ActiveStakeholderID; id != "" {
		for i := range st.Stakeholders {
			if st.Stakeholders[i].ID == id && !st.Stakeholders[i].Completed() {
				st.Stakeholders[i].Status = project.StatusInProgress
			}
		}
	}
	v := View{
		WorkspaceID:         w.ID,
		State:               st,
		Step:                w.nav.Step,
		SidebarStep:         w.nav.SidebarStep(),
		Sidebar:             wizard.Sidebar(),
		ActiveStakeholderID: w.nav.ActiveStakeholderID,
		Gates: Gates{
			CanAdvance:      w.nav.CanAdvance(w.state),
			HasStakeholders: w.state.HasStakeholders(),
			CompletedCount:  w.state.CompletedCount(),
			CanSynthesize:   w.state.CanSynthesize(),
		},
		Synthesis: w.synth.Result(),
	}
	if w.session != nil {
		snap := w.session.Snapshot()
		v.Session = &snap
	}
	return v
}
