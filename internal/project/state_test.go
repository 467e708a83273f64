package project

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleAssociationIsItsOwnInverse(t *testing.T) {
	st, err := Default().AddStakeholder("s1", "Ada")
	require.NoError(t, err)
	st, err = st.ToggleAssociation("s1", Geography, "geo2")
	require.NoError(t, err)

	for _, c := range Categories {
		for _, id := range []string{"bu1", "geo2", "l2", "missing"} {
			before, _ := st.Stakeholder("s1")
			once, err := st.ToggleAssociation("s1", c, id)
			require.NoError(t, err)
			twice, err := once.ToggleAssociation("s1", c, id)
			require.NoError(t, err)
			after, _ := twice.Stakeholder("s1")
			assert.True(t, before.Links(c).Equal(after.Links(c)), "%s/%s", c, id)
		}
	}
}

func TestToggleAssociationTargetsOneCategory(t *testing.T) {
	st, err := Default().AddStakeholder("s1", "")
	require.NoError(t, err)
	st, err = st.ToggleAssociation("s1", Label, "l1")
	require.NoError(t, err)

	sh, ok := st.Stakeholder("s1")
	require.True(t, ok)
	assert.Equal(t, IDSet{"l1"}, sh.LabelIDs)
	assert.Empty(t, sh.BusinessUnitIDs)
	assert.Empty(t, sh.GeographyIDs)
}

func TestMutationsDoNotTouchReceiver(t *testing.T) {
	base, err := Default().AddStakeholder("s1", "Ada")
	require.NoError(t, err)
	snapshot := base.Clone()

	_, err = base.ToggleAssociation("s1", BusinessUnit, "bu1")
	require.NoError(t, err)
	_, err = base.RenameEntity(Geography, "geo1", "Europe")
	require.NoError(t, err)
	_, err = base.RemoveEntity(Label, "l1")
	require.NoError(t, err)
	_, err = base.CompleteInterview("s1", "Stakeholder: hi")
	require.NoError(t, err)
	_ = base.WithProblemStatement("changed")

	assert.Equal(t, snapshot, base)
}

func TestAddStakeholderDefaults(t *testing.T) {
	st, err := Default().AddStakeholder("s1", "")
	require.NoError(t, err)
	st, err = st.AddStakeholder("s2", "  ")
	require.NoError(t, err)

	assert.Equal(t, "Stakeholder 1", st.Stakeholders[0].Name)
	assert.Equal(t, "Stakeholder 2", st.Stakeholders[1].Name)
	assert.Equal(t, StatusPending, st.Stakeholders[1].Status)

	_, err = st.AddStakeholder("s1", "dup")
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestCompleteInterviewOnce(t *testing.T) {
	st, err := Default().AddStakeholder("s1", "Ada")
	require.NoError(t, err)
	st, err = st.CompleteInterview("s1", "first")
	require.NoError(t, err)

	again, err := st.CompleteInterview("s1", "second")
	require.ErrorIs(t, err, ErrAlreadyCompleted)
	sh, _ := again.Stakeholder("s1")
	assert.Equal(t, StatusCompleted, sh.Status)
	assert.Equal(t, "first", sh.Transcript)

	// Unrelated edits keep the completed status and transcript.
	st, err = st.RenameStakeholder("s1", "Ada L.")
	require.NoError(t, err)
	st, err = st.ToggleAssociation("s1", BusinessUnit, "bu2")
	require.NoError(t, err)
	sh, _ = st.Stakeholder("s1")
	assert.Equal(t, StatusCompleted, sh.Status)
	assert.Equal(t, "first", sh.Transcript)

	_, err = st.CompleteInterview("nobody", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCanSynthesize(t *testing.T) {
	cases := []struct {
		completed int
		pending   int
		want      bool
	}{
		{0, 0, false},
		{0, 3, false},
		{1, 2, false},
		{2, 0, true},
		{2, 4, true},
		{5, 1, true},
	}
	for _, tc := range cases {
		var roster []Stakeholder
		for i := 0; i < tc.completed; i++ {
			roster = append(roster, Stakeholder{Status: StatusCompleted})
		}
		for i := 0; i < tc.pending; i++ {
			roster = append(roster, Stakeholder{Status: StatusPending})
		}
		assert.Equal(t, tc.want, CanSynthesize(roster), "completed=%d pending=%d", tc.completed, tc.pending)
		assert.Equal(t, tc.want, State{Stakeholders: roster}.CanSynthesize())
	}
}

func TestRemoveEntityLeavesDanglingLinks(t *testing.T) {
	st, err := Default().AddStakeholder("s1", "Ada")
	require.NoError(t, err)
	st, err = st.ToggleAssociation("s1", BusinessUnit, "bu1")
	require.NoError(t, err)
	st, err = st.ToggleAssociation("s1", BusinessUnit, "bu2")
	require.NoError(t, err)

	st, err = st.RemoveEntity(BusinessUnit, "bu1")
	require.NoError(t, err)

	sh, _ := st.Stakeholder("s1")
	assert.True(t, sh.BusinessUnitIDs.Has("bu1"))
	assert.Equal(t, []string{"Operations & Production"}, st.ResolveNames(BusinessUnit, sh.BusinessUnitIDs))

	_, err = st.RemoveEntity(BusinessUnit, "bu1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddEntity(t *testing.T) {
	ids := NewIDGen()
	id := ids.Entity(Geography)
	require.True(t, strings.HasPrefix(id, "geo-"))

	st, err := Default().AddEntity(Geography, OrgEntity{ID: id})
	require.NoError(t, err)
	e, ok := st.Entity(Geography, id)
	require.True(t, ok)
	assert.Equal(t, "New geography", e.Name)
	assert.Len(t, st.Geographies, 3)

	_, err = st.AddEntity(Geography, OrgEntity{ID: id, Name: "again"})
	assert.ErrorIs(t, err, ErrDuplicateID)

	// Same id may live in another category.
	_, err = st.AddEntity(Label, OrgEntity{ID: id, Name: "tag"})
	assert.NoError(t, err)
}

func TestIDGenNeverRepeats(t *testing.T) {
	ids := NewIDGen()
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		id := ids.Stakeholder()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestWithInterviewConfigValidates(t *testing.T) {
	cfg := DefaultInterviewConfig()
	cfg.Tone = "sarcastic"
	st := Default()
	out, err := st.WithInterviewConfig(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, st, out)

	cfg.Tone = ToneDirect
	cfg.Conciseness = ConcisenessLow
	out, err = st.WithInterviewConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, ConcisenessLow, out.InterviewConfig.Conciseness)
}

func TestParseCategory(t *testing.T) {
	for raw, want := range map[string]Category{
		"business_unit": BusinessUnit,
		"units":         BusinessUnit,
		"Geography":     Geography,
		" labels ":      Label,
	} {
		got, err := ParseCategory(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}
	_, err := ParseCategory("teams")
	assert.Error(t, err)
}
