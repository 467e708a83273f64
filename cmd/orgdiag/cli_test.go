package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgdiag/internal/project"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SEED_PATH", "")
	t.Setenv("LLM_RPS", "")
	var out bytes.Buffer
	app := newCLIApp(strings.NewReader(stdin), &out)
	err := app.Run(append([]string{"orgdiag"}, args...))
	return out.String(), err
}

func TestSeedPrintsDefaultProject(t *testing.T) {
	out, err := runCLI(t, "", "seed")
	require.NoError(t, err)

	st, err := project.LoadSeed(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, project.Default().BusinessUnits, st.BusinessUnits)
	assert.Empty(t, st.Stakeholders)
}

func TestRunInteractiveWizard(t *testing.T) {
	stdin := strings.Join([]string{
		"Margins are shrinking",
		"Alice, Bob",
		"Supplier costs went up",
		"/done",
		"",
		"Too many handoffs",
		"/done",
	}, "\n") + "\n"

	out, err := runCLI(t, stdin, "run", "--fake-llm")
	require.NoError(t, err)

	assert.Contains(t, out, "== Interview with Alice")
	assert.Contains(t, out, "== Interview with Bob")
	assert.Contains(t, out, "Consultant: Question 2")
	assert.Contains(t, out, "# Diagnostic Findings")
	assert.Contains(t, out, "Margins are shrinking")
	assert.Contains(t, out, "Fake hypothesis")
}

func TestRunStopsBelowSynthesisThreshold(t *testing.T) {
	stdin := "Slow decisions\nAlice, Bob\nfine\n/done\n/skip\n"

	out, err := runCLI(t, stdin, "run", "--fake-llm")
	require.NoError(t, err)

	assert.Contains(t, out, "Synthesis needs at least 2 completed interviews (have 1).")
	assert.NotContains(t, out, "# Diagnostic Findings")
}

func TestRunWithSeedWritesHTML(t *testing.T) {
	dir := t.TempDir()
	seed := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seed, []byte(`problemStatement: Churn in EMEA
stakeholders:
  - id: s1
    name: Dana
    geographyIds: [geo1]
  - id: s2
    name: Eli
`), 0o644))
	dst := filepath.Join(dir, "report.html")

	out, err := runCLI(t, "answer\n/done\nanswer\n/done\n", "run", "--fake-llm", "--seed", seed, "--format", "html", "--out", dst)
	require.NoError(t, err)
	assert.NotContains(t, out, "Problem statement:")
	assert.Contains(t, out, "Report written to "+dst)

	doc, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "<h1>Diagnostic Findings</h1>")
	assert.Contains(t, string(doc), "Churn in EMEA")
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	_, err := runCLI(t, "", "run", "--fake-llm", "--format", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}
