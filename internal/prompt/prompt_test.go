package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgdiag/internal/llm"
	"orgdiag/internal/project"
)

func linkedState(t *testing.T) project.State {
	t.Helper()
	st := project.Default().WithProblemStatement("Procurement lead times doubled this year.")
	st, err := st.AddStakeholder("s1", "Dana")
	require.NoError(t, err)
	for _, link := range []struct {
		c  project.Category
		id string
	}{
		{project.BusinessUnit, "bu1"},
		{project.BusinessUnit, "bu2"},
		{project.Geography, "geo1"},
		{project.Label, "l1"},
	} {
		st, err = st.ToggleAssociation("s1", link.c, link.id)
		require.NoError(t, err)
	}
	return st
}

func TestInterviewInstructionCarriesContext(t *testing.T) {
	st := linkedState(t)
	sh, _ := st.Stakeholder("s1")

	out := BuildInterviewSystemInstruction(sh, st, nil)

	for _, want := range []string{
		"Expert Consultant",
		"Tone: professional",
		ConcisenessGuidance(project.ConcisenessHigh),
		"Always ask only ONE question at a time.",
		"Problem: Procurement lead times doubled this year.",
		"Stakeholder: Dana",
		"Business Units: Global Procurement, Operations & Production",
		"Geographies: EMEA",
		"Roles/Labels: Management",
	} {
		assert.Contains(t, out, want)
	}
}

func TestInterviewInstructionDefaultsForUnassigned(t *testing.T) {
	st, err := project.Default().AddStakeholder("s1", "Lee")
	require.NoError(t, err)
	sh, _ := st.Stakeholder("s1")

	out := BuildInterviewSystemInstruction(sh, st, nil)
	assert.Contains(t, out, "Business Units: "+NoUnits)
	assert.Contains(t, out, "Geographies: "+NoGeos)
	assert.Contains(t, out, "Roles/Labels: "+NoLabels)
}

func TestInterviewInstructionSkipsDanglingIDs(t *testing.T) {
	st := linkedState(t)
	st, err := st.RemoveEntity(project.BusinessUnit, "bu2")
	require.NoError(t, err)
	st, err = st.RemoveEntity(project.Label, "l1")
	require.NoError(t, err)
	sh, _ := st.Stakeholder("s1")
	require.True(t, sh.BusinessUnitIDs.Has("bu2"), "links stay dangling")

	out := BuildInterviewSystemInstruction(sh, st, nil)
	assert.Contains(t, out, "Business Units: Global Procurement\n")
	assert.NotContains(t, out, "bu2")
	assert.NotContains(t, out, "Operations & Production")
	assert.Contains(t, out, "Roles/Labels: "+NoLabels)
}

func TestConcisenessGuidanceVariesByLevel(t *testing.T) {
	st := linkedState(t)
	sh, _ := st.Stakeholder("s1")

	seen := map[string]bool{}
	for _, c := range []project.Conciseness{project.ConcisenessHigh, project.ConcisenessMedium, project.ConcisenessLow} {
		cfg := st.InterviewConfig
		cfg.Conciseness = c
		next, err := st.WithInterviewConfig(cfg)
		require.NoError(t, err)
		out := BuildInterviewSystemInstruction(sh, next, nil)
		assert.Contains(t, out, ConcisenessGuidance(c))
		seen[ConcisenessGuidance(c)] = true
	}
	assert.Len(t, seen, 3)
	assert.Contains(t, ConcisenessGuidance(project.ConcisenessHigh), "ONE question")
	assert.Contains(t, ConcisenessGuidance(project.ConcisenessMedium), "one or two")
	assert.Contains(t, ConcisenessGuidance(project.ConcisenessLow), "multiple")
}

func TestInterviewInstructionIsDeterministic(t *testing.T) {
	st := linkedState(t)
	sh, _ := st.Stakeholder("s1")
	history := []llm.Turn{{Role: llm.RoleModel, Text: "Hi"}, {Role: llm.RoleUser, Text: "Hello"}}

	a := BuildInterviewSystemInstruction(sh, st, history)
	b := BuildInterviewSystemInstruction(sh, st.Clone(), append([]llm.Turn(nil), history...))
	assert.Equal(t, a, b)
	assert.Contains(t, a, "Stakeholder answers so far: 1")
}

func TestSynthesisPromptIncludesOnlyCompleted(t *testing.T) {
	st := linkedState(t)
	st, err := st.AddStakeholder("s2", "Omar")
	require.NoError(t, err)
	st, err = st.AddStakeholder("s3", "Pending Person")
	require.NoError(t, err)
	st, err = st.ToggleAssociation("s2", project.Geography, "geo2")
	require.NoError(t, err)
	st, err = st.CompleteInterview("s1", "Stakeholder: slow approvals\n\nConsultant: why?")
	require.NoError(t, err)
	st, err = st.CompleteInterview("s2", "Stakeholder: supplier churn")
	require.NoError(t, err)

	out := BuildSynthesisPrompt(st)

	assert.Contains(t, out, "Procurement lead times doubled this year.")
	assert.Contains(t, out, "STAKEHOLDER: Dana (Units: Global Procurement, Operations & Production, Geos: EMEA)\nTRANSCRIPT:\nStakeholder: slow approvals")
	assert.Contains(t, out, "STAKEHOLDER: Omar (Units: , Geos: North America)")
	assert.Contains(t, out, "supplier churn")
	assert.NotContains(t, out, "Pending Person")
	assert.Equal(t, 2, strings.Count(out, BlockSeparator+"\n"))
	assert.Less(t, strings.Index(out, "Dana"), strings.Index(out, "Omar"))
	assert.Equal(t, out, BuildSynthesisPrompt(st))
}

func TestSynthesisPromptWithoutInterviews(t *testing.T) {
	out := BuildSynthesisPrompt(project.Default().WithProblemStatement("Late shipments"))
	assert.Contains(t, out, "Late shipments")
	assert.NotContains(t, out, "STAKEHOLDER:")
	assert.NotContains(t, out, "[INTERVIEW DATA]")
}
