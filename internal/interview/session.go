package interview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"orgdiag/internal/llm"
	"orgdiag/internal/project"
	"orgdiag/internal/prompt"
)

var (
	ErrEmptyInput       = errors.New("interview: empty input")
	ErrRequestInFlight  = errors.New("interview: a request is already in flight")
	ErrSessionClosed    = errors.New("interview: session closed")
	ErrAlreadyInterview = errors.New("interview: stakeholder already interviewed")
	ErrAlreadyStarted   = errors.New("interview: session already started")
)

// Session runs one conversation for one stakeholder. It owns its history;
// callers only ever see copies.
type Session struct {
	mu          sync.Mutex
	model       llm.Model
	stakeholder project.Stakeholder
	state       project.State
	history     []llm.Turn
	guard       guard
	started     bool
	closed      bool
	lastErr     string
	voiceActive bool
}

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	StakeholderID   string     `json:"stakeholderId"`
	StakeholderName string     `json:"stakeholderName"`
	History         []llm.Turn `json:"history"`
	InFlight        bool       `json:"inFlight"`
	Closed          bool       `json:"closed"`
	LastError       string     `json:"lastError,omitempty"`
	VoiceActive     bool       `json:"voiceActive"`
}

// Open prepares a session for stakeholderID without contacting the model.
// The state is captured as of this call.
func Open(model llm.Model, state project.State, stakeholderID string) (*Session, error) {
	if model == nil {
		return nil, fmt.Errorf("interview: nil model")
	}
	sh, ok := state.Stakeholder(stakeholderID)
	if !ok {
		return nil, fmt.Errorf("%w: stakeholder %s", project.ErrNotFound, stakeholderID)
	}
	if sh.Completed() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInterview, sh.Name)
	}
	return &Session{model: model, stakeholder: sh, state: state.Clone()}, nil
}

// Start opens a session and requests the consultant's opening question.
// If the opening request fails the session is still returned, with an empty
// history, so the user can retry by sending a message.
func Start(ctx context.Context, model llm.Model, state project.State, stakeholderID string) (*Session, error) {
	s, err := Open(model, state, stakeholderID)
	if err != nil {
		return nil, err
	}
	return s, s.Begin(ctx)
}

// Begin sends the bootstrap turn. It may be called once.
func (s *Session) Begin(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()
	return s.exchange(ctx, nil)
}

// Submit appends the stakeholder's answer and asks for the next question.
// On failure the answer stays in history without a reply.
func (s *Session) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}
	return s.exchange(ctx, &llm.Turn{Role: llm.RoleUser, Text: text})
}

func (s *Session) exchange(ctx context.Context, user *llm.Turn) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	t, ok := s.guard.admit(ctx)
	if !ok {
		s.mu.Unlock()
		return ErrRequestInFlight
	}
	s.started = true
	if user != nil {
		s.history = append(s.history, *user)
	}
	sys := prompt.BuildInterviewSystemInstruction(s.stakeholder, s.state, s.history)
	turns := s.requestTurns()
	s.mu.Unlock()

	reply, err := s.model.GenerateTurn(llm.WithOperation(t.ctx, llm.OpTurn+":"+s.stakeholder.ID), sys, turns)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.guard.finish(t) || s.closed {
		return ErrSessionClosed
	}
	if err == nil && strings.TrimSpace(reply) == "" {
		err = llm.ErrEmptyResponse
	}
	if err != nil {
		err = llm.AsServiceError(llm.OpTurn, err)
		s.lastErr = err.Error()
		log.Printf("interview %s: turn failed: %v", s.stakeholder.ID, err)
		return err
	}
	s.lastErr = ""
	s.history = append(s.history, llm.Turn{Role: llm.RoleModel, Text: reply})
	return nil
}

// requestTurns is the history as sent to the model: the bootstrap turn
// followed by the visible conversation. Caller holds s.mu.
func (s *Session) requestTurns() []llm.Turn {
	out := make([]llm.Turn, 0, len(s.history)+1)
	out = append(out, llm.Turn{Role: llm.RoleUser, Text: prompt.Bootstrap})
	return append(out, s.history...)
}

// Cancel abandons the session. A pending request is cancelled and its reply
// discarded. Nothing is written back to the project.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guard.abort()
	s.closed = true
	s.history = nil
}

// Transcript renders the current history.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RenderTranscript(s.history)
}

// Finalize renders the transcript and closes the session. It is refused
// while a request is in flight.
func (s *Session) Finalize() (string, error) {
	var out string
	err := s.Commit(func(transcript string) error {
		out = transcript
		return nil
	})
	return out, err
}

// Commit renders the transcript and passes it to commit with the session
// held, so no turn can land in between. The session closes only if commit
// succeeds; otherwise it stays open and unchanged.
func (s *Session) Commit(commit func(transcript string) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.guard.busy() {
		return ErrRequestInFlight
	}
	if err := commit(RenderTranscript(s.history)); err != nil {
		return err
	}
	s.closed = true
	s.history = nil
	return nil
}

// SetVoiceActive toggles the cosmetic voice indicator.
func (s *Session) SetVoiceActive(on bool) {
	s.mu.Lock()
	s.voiceActive = on
	s.mu.Unlock()
}

func (s *Session) StakeholderID() string { return s.stakeholder.ID }

func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guard.busy()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		StakeholderID:   s.stakeholder.ID,
		StakeholderName: s.stakeholder.Name,
		History:         append([]llm.Turn(nil), s.history...),
		InFlight:        s.guard.busy(),
		Closed:          s.closed,
		LastError:       s.lastErr,
		VoiceActive:     s.voiceActive,
	}
}
