package workspace

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"orgdiag/internal/interview"
	"orgdiag/internal/llm"
	"orgdiag/internal/project"
	"orgdiag/internal/report"
	"orgdiag/internal/synthesis"
	"orgdiag/internal/wizard"
)

var (
	ErrWorkspaceNotFound = errors.New("workspace: not found")
	ErrNoSession         = errors.New("workspace: no active interview")
	ErrSessionEnded      = errors.New("workspace: interview session has ended")
	ErrSessionActive     = errors.New("workspace: stakeholder is being interviewed")
	ErrNoReport          = errors.New("workspace: no report available")
)

type Options struct {
	Model         llm.Model
	Seed          *project.State
	MaxWorkspaces int
	IDs           *project.IDGen

	// Archive receives every successful report. Optional.
	Archive report.Store
}

// Service applies user actions to workspaces. Each action runs under the
// workspace lock except model calls, which run with the lock released.
type Service struct {
	store   *Store
	ids     *project.IDGen
	model   llm.Model
	orch    *synthesis.Orchestrator
	archive report.Store
	seed    project.State
}

func NewService(opts Options) (*Service, error) {
	if opts.Model == nil {
		return nil, fmt.Errorf("workspace: model is required")
	}
	store, err := NewStore(opts.MaxWorkspaces)
	if err != nil {
		return nil, err
	}
	seed := project.Default()
	if opts.Seed != nil {
		seed = opts.Seed.Clone()
	}
	ids := opts.IDs
	if ids == nil {
		ids = project.NewIDGen()
	}
	return &Service{
		store:   store,
		ids:     ids,
		model:   opts.Model,
		orch:    synthesis.New(opts.Model),
		archive: opts.Archive,
		seed:    seed,
	}, nil
}

func (s *Service) Store() *Store { return s.store }

// Create starts a new wizard run from the seed project.
func (s *Service) Create() View {
	ws := newWorkspace(s.ids.Workspace(), s.seed.Clone())
	s.store.Put(ws)
	log.Printf("workspace %s: created", ws.ID)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.viewLocked()
}

func (s *Service) Delete(id string) error {
	ws, err := s.lookup(id)
	if err != nil {
		return err
	}
	ws.abandonSession()
	s.store.Remove(id)
	return nil
}

func (s *Service) Get(id string) (View, error) {
	return s.read(id, func(*Workspace) {})
}

func (s *Service) lookup(id string) (*Workspace, error) {
	ws, ok := s.store.Get(strings.TrimSpace(id))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}
	return ws, nil
}

func (s *Service) read(id string, fn func(*Workspace)) (View, error) {
	ws, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	fn(ws)
	return ws.viewLocked(), nil
}

// mutate applies a copy-on-write edit to the project. On error the state is
// left as it was.
func (s *Service) mutate(id string, edit func(project.State) (project.State, error)) (View, error) {
	ws, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	next, err := edit(ws.state)
	if err != nil {
		return ws.viewLocked(), err
	}
	ws.state = next
	return ws.viewLocked(), nil
}

// ---------------------------------------------------------------------------
// project edits
// ---------------------------------------------------------------------------

func (s *Service) SetProblemStatement(id, text string) (View, error) {
	return s.mutate(id, func(st project.State) (project.State, error) {
		return st.WithProblemStatement(text), nil
	})
}

func (s *Service) AddEntity(id string, c project.Category, name string) (View, error) {
	return s.mutate(id, func(st project.State) (project.State, error) {
		return st.AddEntity(c, project.OrgEntity{ID: s.ids.Entity(c), Name: name})
	})
}

func (s *Service) RenameEntity(id string, c project.Category, entityID, name string) (View, error) {
	return s.mutate(id, func(st project.State) (project.State, error) {
		return st.RenameEntity(c, entityID, name)
	})
}

func (s *Service) RemoveEntity(id string, c project.Category, entityID string) (View, error) {
	return s.mutate(id, func(st project.State) (project.State, error) {
		return st.RemoveEntity(c, entityID)
	})
}

// AddStakeholder appends a pending stakeholder. A blank name gets the next
// default name.
func (s *Service) AddStakeholder(id, name string) (View, error) {
	return s.mutate(id, func(st project.State) (project.State, error) {
		return st.AddStakeholder(s.ids.Stakeholder(), name)
	})
}

func (s *Service) RenameStakeholder(id, stakeholderID, name string) (View, error) {
	return s.mutate(id, func(st project.State) (project.State, error) {
		return st.RenameStakeholder(stakeholderID, name)
	})
}

func (s *Service) RemoveStakeholder(id, stakeholderID string) (View, error) {
	ws, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.nav.ActiveStakeholderID == stakeholderID {
		return ws.viewLocked(), ErrSessionActive
	}
	next, err := ws.state.RemoveStakeholder(stakeholderID)
	if err != nil {
		return ws.viewLocked(), err
	}
	ws.state = next
	return ws.viewLocked(), nil
}

func (s *Service) ToggleAssociation(id, stakeholderID string, c project.Category, entityID string) (View, error) {
	return s.mutate(id, func(st project.State) (project.State, error) {
		return st.ToggleAssociation(stakeholderID, c, entityID)
	})
}

func (s *Service) UpdateInterviewConfig(id string, cfg project.InterviewConfig) (View, error) {
	return s.mutate(id, func(st project.State) (project.State, error) {
		return st.WithInterviewConfig(cfg)
	})
}

// ---------------------------------------------------------------------------
// navigation
// ---------------------------------------------------------------------------

func (s *Service) Next(id string) (View, error) {
	return s.navigate(id, func(n wizard.Nav, st project.State) (wizard.Nav, bool) { return n.Next(st) })
}

// Back leaves the current step. From an interview it abandons the session.
func (s *Service) Back(id string) (View, error) {
	return s.navigate(id, func(n wizard.Nav, _ project.State) (wizard.Nav, bool) { return n.Back() })
}

// NavigateTo jumps to a sidebar step. Leaving an interview this way
// abandons it.
func (s *Service) NavigateTo(id string, target wizard.Step) (View, error) {
	return s.navigate(id, func(n wizard.Nav, st project.State) (wizard.Nav, bool) { return n.NavigateTo(target, st) })
}

func (s *Service) navigate(id string, move func(wizard.Nav, project.State) (wizard.Nav, bool)) (View, error) {
	ws, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	next, ok := move(ws.nav, ws.state)
	if ok && ws.nav.InSession() && !next.InSession() {
		if ws.session != nil {
			ws.session.Cancel()
			ws.session = nil
		}
		log.Printf("workspace %s: interview with %s abandoned", ws.ID, ws.nav.ActiveStakeholderID)
	}
	if ok {
		ws.nav = next
	}
	v := ws.viewLocked()
	v.Moved = ok
	return v, nil
}

// ---------------------------------------------------------------------------
// interviews
// ---------------------------------------------------------------------------

// StartInterview enters the session step for a stakeholder and asks the
// model for its opening question. A refused start returns Moved=false. A
// failed opening request leaves the session open with an empty history.
func (s *Service) StartInterview(ctx context.Context, id, stakeholderID string) (View, error) {
	ws, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	ws.mu.Lock()
	next, ok := ws.nav.StartInterview(stakeholderID, ws.state)
	if !ok {
		v := ws.viewLocked()
		ws.mu.Unlock()
		return v, nil
	}
	sess, err := interview.Open(s.model, ws.state, stakeholderID)
	if err != nil {
		v := ws.viewLocked()
		ws.mu.Unlock()
		return v, err
	}
	ws.nav = next
	ws.session = sess
	ws.mu.Unlock()

	beginErr := sess.Begin(ctx)

	v, err := s.read(id, func(*Workspace) {})
	if err != nil {
		return View{}, err
	}
	v.Moved = true
	return v, beginErr
}

// SendMessage submits a stakeholder answer to the active session.
func (s *Service) SendMessage(ctx context.Context, id, text string) (View, error) {
	return s.sendMessage(ctx, id, nil, text)
}

func (s *Service) sendMessage(ctx context.Context, id string, want *interview.Session, text string) (View, error) {
	sess, err := s.activeSession(id, want)
	if err != nil {
		v, _ := s.Get(id)
		return v, err
	}
	sendErr := sess.Submit(ctx, text)
	if want != nil && errors.Is(sendErr, interview.ErrSessionClosed) {
		sendErr = ErrSessionEnded
	}
	v, err := s.Get(id)
	if err != nil {
		return View{}, err
	}
	return v, sendErr
}

// FinishInterview stores the transcript on the stakeholder, marks it
// completed and returns to the hub. While a request is in flight it is
// refused and nothing changes.
func (s *Service) FinishInterview(id string) (View, error) {
	return s.finishInterview(id, nil)
}

func (s *Service) finishInterview(id string, want *interview.Session) (View, error) {
	ws, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := ws.checkSessionLocked(want); err != nil {
		return ws.viewLocked(), err
	}
	shID := ws.session.StakeholderID()
	err = ws.session.Commit(func(transcript string) error {
		next, err := ws.state.CompleteInterview(shID, transcript)
		if err != nil {
			return err
		}
		ws.state = next
		return nil
	})
	if err != nil {
		return ws.viewLocked(), err
	}
	ws.session = nil
	ws.nav, _ = ws.nav.LeaveSession()
	// A new transcript makes any earlier report stale.
	ws.synth.Reset()
	log.Printf("workspace %s: interview with %s completed", ws.ID, shID)
	v := ws.viewLocked()
	v.Moved = true
	return v, nil
}

// CancelInterview abandons the active session without saving anything.
func (s *Service) CancelInterview(id string) (View, error) {
	return s.cancelInterview(id, nil)
}

func (s *Service) cancelInterview(id string, want *interview.Session) (View, error) {
	ws, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := ws.checkSessionLocked(want); err != nil {
		return ws.viewLocked(), err
	}
	ws.dropSessionLocked()
	v := ws.viewLocked()
	v.Moved = true
	return v, nil
}

func (s *Service) SetVoiceActive(id string, on bool) (View, error) {
	return s.setVoiceActive(id, nil, on)
}

func (s *Service) setVoiceActive(id string, want *interview.Session, on bool) (View, error) {
	sess, err := s.activeSession(id, want)
	if err != nil {
		v, _ := s.Get(id)
		return v, err
	}
	sess.SetVoiceActive(on)
	return s.Get(id)
}

// Session returns the active interview of a workspace.
func (s *Service) Session(id string) (*interview.Session, error) {
	return s.activeSession(id, nil)
}

// activeSession returns the workspace's session. A non-nil want must be
// that session.
func (s *Service) activeSession(id string, want *interview.Session) (*interview.Session, error) {
	ws, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := ws.checkSessionLocked(want); err != nil {
		return nil, err
	}
	return ws.session, nil
}

// SessionHandle is bound to one interview session of a workspace. Its
// actions fail with ErrSessionEnded once that session was finished,
// cancelled or replaced by another stakeholder's interview.
type SessionHandle struct {
	svc         *Service
	workspaceID string
	sess        *interview.Session
}

// Attach binds a handle to the workspace's current session.
func (s *Service) Attach(id string) (*SessionHandle, error) {
	sess, err := s.activeSession(id, nil)
	if err != nil {
		return nil, err
	}
	return &SessionHandle{svc: s, workspaceID: id, sess: sess}, nil
}

func (h *SessionHandle) Session() *interview.Session { return h.sess }

func (h *SessionHandle) StakeholderID() string { return h.sess.StakeholderID() }

func (h *SessionHandle) Send(ctx context.Context, text string) (View, error) {
	return h.svc.sendMessage(ctx, h.workspaceID, h.sess, text)
}

func (h *SessionHandle) Finish() (View, error) {
	return h.svc.finishInterview(h.workspaceID, h.sess)
}

func (h *SessionHandle) Cancel() (View, error) {
	return h.svc.cancelInterview(h.workspaceID, h.sess)
}

func (h *SessionHandle) SetVoiceActive(on bool) (View, error) {
	return h.svc.setVoiceActive(h.workspaceID, h.sess, on)
}

// ---------------------------------------------------------------------------
// synthesis
// ---------------------------------------------------------------------------

// OpenSynthesis moves from the hub to the report and runs a synthesis. It
// is refused with fewer than two completed interviews.
func (s *Service) OpenSynthesis(ctx context.Context, id string) (View, error) {
	ws, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	ws.mu.Lock()
	next, ok := ws.nav.OpenSynthesis(ws.state)
	if !ok {
		v := ws.viewLocked()
		ws.mu.Unlock()
		return v, nil
	}
	ws.nav = next
	ws.mu.Unlock()

	v, err := s.Synthesize(ctx, id)
	v.Moved = true
	return v, err
}

// Synthesize re-runs the synthesis from the report step. Anywhere else, or
// below the completed-interview threshold, it is refused with Moved=false
// and the model is not called. A run always ends ready or failed.
func (s *Service) Synthesize(ctx context.Context, id string) (View, error) {
	ws, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	ws.mu.Lock()
	if ws.nav.Step != wizard.SynthesisReport || !ws.state.CanSynthesize() {
		v := ws.viewLocked()
		ws.mu.Unlock()
		return v, nil
	}
	st := ws.state.Clone()
	ws.mu.Unlock()

	ticket, err := ws.synth.Begin()
	if err != nil {
		v, _ := s.Get(id)
		return v, err
	}

	rep, runErr := s.orch.Run(ctx, st)
	if runErr != nil {
		log.Printf("workspace %s: synthesis failed: %v", ws.ID, runErr)
		ws.synth.Fail(ticket, runErr)
	} else {
		ws.synth.Succeed(ticket, rep)
		if err := report.Save(ctx, s.archive, ws.ID, st.ProblemStatement, rep); err != nil {
			log.Printf("workspace %s: archive report: %v", ws.ID, err)
		}
	}
	v, err := s.Get(id)
	if err != nil {
		return View{}, err
	}
	return v, runErr
}

// Report returns the last successful report with the problem it answers.
func (s *Service) Report(id string) (string, project.Report, error) {
	ws, err := s.lookup(id)
	if err != nil {
		return "", project.Report{}, err
	}
	res := ws.synth.Result()
	if res.Status != synthesis.StatusReady || res.Report == nil {
		return "", project.Report{}, ErrNoReport
	}
	return ws.State().ProblemStatement, *res.Report, nil
}
