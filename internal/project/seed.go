package project

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadSeed decodes a YAML project seed. Missing sections fall back to the
// defaults; stakeholders without a status start pending. Unknown statuses
// are rejected.
func LoadSeed(r io.Reader) (State, error) {
	st := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&st); err != nil && err != io.EOF {
		return State{}, fmt.Errorf("project: decode seed: %w", err)
	}
	if st.InterviewConfig == (InterviewConfig{}) {
		st.InterviewConfig = DefaultInterviewConfig()
	}
	if err := st.InterviewConfig.Validate(); err != nil {
		return State{}, err
	}
	seen := make(map[string]struct{}, len(st.Stakeholders))
	for i := range st.Stakeholders {
		sh := &st.Stakeholders[i]
		if strings.TrimSpace(sh.ID) == "" {
			return State{}, fmt.Errorf("project: seed stakeholder %d has no id", i)
		}
		if _, dup := seen[sh.ID]; dup {
			return State{}, fmt.Errorf("%w: stakeholder %s", ErrDuplicateID, sh.ID)
		}
		seen[sh.ID] = struct{}{}
		switch sh.Status {
		case "", StatusInProgress:
			// No interview session survives a reload.
			sh.Status = StatusPending
		case StatusPending, StatusCompleted:
		default:
			return State{}, fmt.Errorf("project: seed stakeholder %s has unknown status %q", sh.ID, sh.Status)
		}
		sh.BusinessUnitIDs = NewIDSet(sh.BusinessUnitIDs...)
		sh.GeographyIDs = NewIDSet(sh.GeographyIDs...)
		sh.LabelIDs = NewIDSet(sh.LabelIDs...)
	}
	for _, c := range Categories {
		ids := make(map[string]struct{})
		for _, e := range st.Entities(c) {
			if _, dup := ids[e.ID]; dup {
				return State{}, fmt.Errorf("%w: %s %s", ErrDuplicateID, c, e.ID)
			}
			ids[e.ID] = struct{}{}
		}
	}
	return st, nil
}

func LoadSeedFile(path string) (State, error) {
	f, err := os.Open(path)
	if err != nil {
		return State{}, err
	}
	defer f.Close()
	return LoadSeed(f)
}

// MarshalSeed encodes a state in the seed format.
func MarshalSeed(st State) ([]byte, error) {
	return yaml.Marshal(st)
}
