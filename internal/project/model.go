package project

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound         = errors.New("project: not found")
	ErrDuplicateID      = errors.New("project: duplicate id")
	ErrAlreadyCompleted = errors.New("project: interview already completed")
	ErrInvalidConfig    = errors.New("project: invalid interview config")
)

// OrgEntity is a named tag. Its category is the collection holding it.
type OrgEntity struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Stakeholder is a person to be interviewed.
type Stakeholder struct {
	ID              string `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	BusinessUnitIDs IDSet  `json:"businessUnitIds" yaml:"businessUnitIds"`
	GeographyIDs    IDSet  `json:"geographyIds" yaml:"geographyIds"`
	LabelIDs        IDSet  `json:"labelIds" yaml:"labelIds"`
	Status          Status `json:"status" yaml:"status"`
	Transcript      string `json:"transcript,omitempty" yaml:"transcript,omitempty"`
}

func (s Stakeholder) Completed() bool { return s.Status == StatusCompleted }

func (s Stakeholder) clone() Stakeholder {
	s.BusinessUnitIDs = s.BusinessUnitIDs.clone()
	s.GeographyIDs = s.GeographyIDs.clone()
	s.LabelIDs = s.LabelIDs.clone()
	return s
}

type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneDirect       Tone = "direct"
)

type Conciseness string

const (
	ConcisenessHigh   Conciseness = "high"
	ConcisenessMedium Conciseness = "medium"
	ConcisenessLow    Conciseness = "low"
)

// InterviewConfig parameterizes every interview session.
type InterviewConfig struct {
	Persona            string      `json:"persona" yaml:"persona"`
	Tone               Tone        `json:"tone" yaml:"tone"`
	Conciseness        Conciseness `json:"conciseness" yaml:"conciseness"`
	CustomInstructions string      `json:"customInstructions" yaml:"customInstructions"`
}

func (c InterviewConfig) Validate() error {
	switch c.Tone {
	case ToneProfessional, ToneFriendly, ToneDirect:
	default:
		return fmt.Errorf("%w: tone %q", ErrInvalidConfig, c.Tone)
	}
	switch c.Conciseness {
	case ConcisenessHigh, ConcisenessMedium, ConcisenessLow:
	default:
		return fmt.Errorf("%w: conciseness %q", ErrInvalidConfig, c.Conciseness)
	}
	return nil
}

// Hypothesis is one synthesized finding. It is never stored in State.
type Hypothesis struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Confidence     float64  `json:"confidence"`
	EvidenceSource []string `json:"evidenceSource"`
}

// Report is the output of one synthesis run.
type Report struct {
	ExecutiveSummary string       `json:"executiveSummary"`
	Hypotheses       []Hypothesis `json:"hypotheses"`
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
