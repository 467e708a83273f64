package workspace

import (
	"sync"
	"time"

	"orgdiag/internal/interview"
	"orgdiag/internal/project"
	"orgdiag/internal/synthesis"
	"orgdiag/internal/wizard"
)

// Workspace is one wizard run: the project, where the user is in the wizard,
// the active interview and the last synthesis result.
type Workspace struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	state   project.State
	nav     wizard.Nav
	session *interview.Session
	synth   synthesis.Tracker
}

func newWorkspace(id string, st project.State) *Workspace {
	return &Workspace{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		state:     st,
		nav:       wizard.Start(),
	}
}

// State returns the current project value.
func (w *Workspace) State() project.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Workspace) Nav() wizard.Nav {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.nav
}

// abandonSession cancels the active interview, if any. Caller must not hold
// w.mu.
func (w *Workspace) abandonSession() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dropSessionLocked()
}

func (w *Workspace) dropSessionLocked() {
	if w.session != nil {
		w.session.Cancel()
		w.session = nil
	}
	if w.nav.InSession() {
		w.nav, _ = w.nav.LeaveSession()
	}
}

// checkSessionLocked requires an active session. A non-nil want must be that
// session. Caller holds w.mu.
func (w *Workspace) checkSessionLocked(want *interview.Session) error {
	active := w.session != nil && w.nav.InSession()
	switch {
	case want != nil && (!active || w.session != want):
		return ErrSessionEnded
	case !active:
		return ErrNoSession
	}
	return nil
}
