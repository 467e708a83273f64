package synthesis

import (
	"errors"
	"sync"

	"orgdiag/internal/project"
)

var ErrSynthesisInFlight = errors.New("synthesis: already running")

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Result is what the report screen shows.
type Result struct {
	Status Status          `json:"status"`
	Report *project.Report `json:"report,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Tracker holds the synthesis status of one workspace. A run always ends in
// ready or failed.
type Tracker struct {
	mu     sync.Mutex
	seq    uint64
	status Status
	report *project.Report
	err    string
}

// Begin moves to loading and returns a ticket for Succeed or Fail.
func (t *Tracker) Begin() (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == StatusLoading {
		return 0, ErrSynthesisInFlight
	}
	t.seq++
	t.status = StatusLoading
	t.report = nil
	t.err = ""
	return t.seq, nil
}

func (t *Tracker) Succeed(ticket uint64, rep project.Report) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ticket != t.seq || t.status != StatusLoading {
		return
	}
	t.status = StatusReady
	t.report = &rep
}

func (t *Tracker) Fail(ticket uint64, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ticket != t.seq || t.status != StatusLoading {
		return
	}
	t.status = StatusFailed
	if err != nil {
		t.err = err.Error()
	}
}

// Reset drops any result. A run still loading is orphaned.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.status = StatusIdle
	t.report = nil
	t.err = ""
}

func (t *Tracker) Result() Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := Result{Status: t.status, Error: t.err}
	if r.Status == "" {
		r.Status = StatusIdle
	}
	if t.report != nil {
		rep := *t.report
		rep.Hypotheses = append([]project.Hypothesis(nil), t.report.Hypotheses...)
		r.Report = &rep
	}
	return r
}
