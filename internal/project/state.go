package project

import (
	"fmt"
	"slices"
)

// MinCompletedForSynthesis is the number of completed interviews required
// before a synthesis report may be requested.
const MinCompletedForSynthesis = 2

// State is the project aggregate. Methods never mutate the receiver: each
// returns a fresh State that the owner swaps in as a whole.
type State struct {
	ProblemStatement string          `json:"problemStatement" yaml:"problemStatement"`
	BusinessUnits    []OrgEntity     `json:"businessUnits" yaml:"businessUnits"`
	Geographies      []OrgEntity     `json:"geographies" yaml:"geographies"`
	Labels           []OrgEntity     `json:"labels" yaml:"labels"`
	Stakeholders     []Stakeholder   `json:"stakeholders" yaml:"stakeholders"`
	InterviewConfig  InterviewConfig `json:"interviewConfig" yaml:"interviewConfig"`
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	out.BusinessUnits = slices.Clone(s.BusinessUnits)
	out.Geographies = slices.Clone(s.Geographies)
	out.Labels = slices.Clone(s.Labels)
	if s.Stakeholders != nil {
		out.Stakeholders = make([]Stakeholder, len(s.Stakeholders))
		for i, sh := range s.Stakeholders {
			out.Stakeholders[i] = sh.clone()
		}
	}
	return out
}

func (s State) WithProblemStatement(text string) State {
	out := s.Clone()
	out.ProblemStatement = text
	return out
}

func (s State) WithInterviewConfig(cfg InterviewConfig) (State, error) {
	if err := cfg.Validate(); err != nil {
		return s, err
	}
	out := s.Clone()
	out.InterviewConfig = cfg
	return out, nil
}

// ---------------------------------------------------------------------------
// org entities
// ---------------------------------------------------------------------------

func (s State) Entities(c Category) []OrgEntity {
	return *c.ops().entities(&s)
}

func (s State) Entity(c Category, id string) (OrgEntity, bool) {
	for _, e := range s.Entities(c) {
		if e.ID == id {
			return e, true
		}
	}
	return OrgEntity{}, false
}

func (s State) AddEntity(c Category, e OrgEntity) (State, error) {
	if blank(e.ID) {
		return s, fmt.Errorf("project: %s id is empty", c)
	}
	if _, ok := s.Entity(c, e.ID); ok {
		return s, fmt.Errorf("%w: %s %s", ErrDuplicateID, c, e.ID)
	}
	if blank(e.Name) {
		e.Name = c.DefaultName()
	}
	out := s.Clone()
	list := c.ops().entities(&out)
	*list = append(*list, e)
	return out, nil
}

func (s State) RenameEntity(c Category, id, name string) (State, error) {
	out := s.Clone()
	list := *c.ops().entities(&out)
	for i := range list {
		if list[i].ID == id {
			list[i].Name = name
			return out, nil
		}
	}
	return s, fmt.Errorf("%w: %s %s", ErrNotFound, c, id)
}

// RemoveEntity drops the entity. Stakeholder links to it are left dangling.
func (s State) RemoveEntity(c Category, id string) (State, error) {
	if _, ok := s.Entity(c, id); !ok {
		return s, fmt.Errorf("%w: %s %s", ErrNotFound, c, id)
	}
	out := s.Clone()
	list := c.ops().entities(&out)
	*list = slices.DeleteFunc(*list, func(e OrgEntity) bool { return e.ID == id })
	return out, nil
}

// ResolveNames returns the names of the referenced entities in collection
// order. Ids with no matching entity are skipped.
func (s State) ResolveNames(c Category, ids IDSet) []string {
	var names []string
	for _, e := range s.Entities(c) {
		if ids.Has(e.ID) {
			names = append(names, e.Name)
		}
	}
	return names
}

// ---------------------------------------------------------------------------
// stakeholders
// ---------------------------------------------------------------------------

func (s State) Stakeholder(id string) (Stakeholder, bool) {
	if i := s.stakeholderIndex(id); i >= 0 {
		return s.Stakeholders[i].clone(), true
	}
	return Stakeholder{}, false
}

func (s State) stakeholderIndex(id string) int {
	return slices.IndexFunc(s.Stakeholders, func(sh Stakeholder) bool { return sh.ID == id })
}

// NextStakeholderName is the placeholder name for the next added stakeholder.
func (s State) NextStakeholderName() string {
	return fmt.Sprintf("Stakeholder %d", len(s.Stakeholders)+1)
}

// AddStakeholder appends a pending stakeholder with no associations.
func (s State) AddStakeholder(id, name string) (State, error) {
	if blank(id) {
		return s, fmt.Errorf("project: stakeholder id is empty")
	}
	if s.stakeholderIndex(id) >= 0 {
		return s, fmt.Errorf("%w: stakeholder %s", ErrDuplicateID, id)
	}
	if blank(name) {
		name = s.NextStakeholderName()
	}
	out := s.Clone()
	out.Stakeholders = append(out.Stakeholders, Stakeholder{
		ID:     id,
		Name:   name,
		Status: StatusPending,
	})
	return out, nil
}

func (s State) RenameStakeholder(id, name string) (State, error) {
	return s.updateStakeholder(id, func(sh *Stakeholder) error {
		sh.Name = name
		return nil
	})
}

func (s State) RemoveStakeholder(id string) (State, error) {
	if s.stakeholderIndex(id) < 0 {
		return s, fmt.Errorf("%w: stakeholder %s", ErrNotFound, id)
	}
	out := s.Clone()
	out.Stakeholders = slices.DeleteFunc(out.Stakeholders, func(sh Stakeholder) bool { return sh.ID == id })
	return out, nil
}

// ToggleAssociation adds entityID to the stakeholder's set for c, or removes
// it when already present. The entity does not have to exist.
func (s State) ToggleAssociation(stakeholderID string, c Category, entityID string) (State, error) {
	return s.updateStakeholder(stakeholderID, func(sh *Stakeholder) error {
		links := c.ops().links(sh)
		*links = links.Toggle(entityID)
		return nil
	})
}

// CompleteInterview records the transcript and marks the stakeholder
// completed. It succeeds once per stakeholder.
func (s State) CompleteInterview(stakeholderID, transcript string) (State, error) {
	return s.updateStakeholder(stakeholderID, func(sh *Stakeholder) error {
		if sh.Completed() {
			return fmt.Errorf("%w: %s", ErrAlreadyCompleted, sh.ID)
		}
		sh.Status = StatusCompleted
		sh.Transcript = transcript
		return nil
	})
}

func (s State) updateStakeholder(id string, fn func(*Stakeholder) error) (State, error) {
	i := s.stakeholderIndex(id)
	if i < 0 {
		return s, fmt.Errorf("%w: stakeholder %s", ErrNotFound, id)
	}
	out := s.Clone()
	if err := fn(&out.Stakeholders[i]); err != nil {
		return s, err
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// gates
// ---------------------------------------------------------------------------

func (s State) HasProblemStatement() bool { return !blank(s.ProblemStatement) }

func (s State) HasStakeholders() bool { return len(s.Stakeholders) > 0 }

func (s State) CompletedCount() int {
	n := 0
	for _, sh := range s.Stakeholders {
		if sh.Completed() {
			n++
		}
	}
	return n
}

func (s State) Completed() []Stakeholder {
	var out []Stakeholder
	for _, sh := range s.Stakeholders {
		if sh.Completed() {
			out = append(out, sh.clone())
		}
	}
	return out
}

// CanSynthesize reports whether enough interviews are completed.
func (s State) CanSynthesize() bool { return CanSynthesize(s.Stakeholders) }

func CanSynthesize(roster []Stakeholder) bool {
	n := 0
	for _, sh := range roster {
		if sh.Completed() {
			n++
		}
	}
	return n >= MinCompletedForSynthesis
}
