package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgdiag/internal/llm"
	"orgdiag/internal/project"
	"orgdiag/internal/report"
	"orgdiag/internal/wizard"
	"orgdiag/internal/workspace"
)

// readyWorkspace returns a service with one workspace whose synthesis has
// finished.
func readyWorkspace(t *testing.T, archive report.Store) (*workspace.Service, string) {
	t.Helper()
	seed := project.Default().WithProblemStatement("Lead times doubled.")
	var err error
	for _, id := range []string{"s1", "s2"} {
		seed, err = seed.AddStakeholder(id, "")
		require.NoError(t, err)
		seed, err = seed.CompleteInterview(id, "Stakeholder: ok")
		require.NoError(t, err)
	}
	svc, err := workspace.NewService(workspace.Options{Model: llm.NewFakeClient(), Seed: &seed, Archive: archive})
	require.NoError(t, err)

	id := svc.Create().WorkspaceID
	v, err := svc.NavigateTo(id, wizard.InterviewHub)
	require.NoError(t, err)
	require.True(t, v.Moved)
	_, err = svc.OpenSynthesis(context.Background(), id)
	require.NoError(t, err)
	return svc, id
}

func TestHandleReportFormats(t *testing.T) {
	svc, id := readyWorkspace(t, nil)
	h := NewReportHandler(svc, nil)

	cases := []struct {
		format      string
		contentType string
		contains    string
	}{
		{"", "text/markdown", "## Executive Summary"},
		{"md", "text/markdown", "Lead times doubled."},
		{"html", "text/html", "<h2>Executive Summary</h2>"},
		{"json", "application/json", `"executiveSummary"`},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.HandleReport(rec, httptest.NewRequest(http.MethodGet, "/report?workspace_id="+id+"&format="+tc.format, nil))
		require.Equal(t, http.StatusOK, rec.Code, tc.format)
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), tc.contentType), tc.format)
		assert.Contains(t, rec.Body.String(), tc.contains, tc.format)
	}
}

func TestHandleReportErrors(t *testing.T) {
	svc, id := readyWorkspace(t, nil)
	h := NewReportHandler(svc, nil)
	fresh := svc.Create().WorkspaceID

	cases := []struct {
		method string
		target string
		status int
	}{
		{http.MethodPost, "/report?workspace_id=" + id, http.StatusMethodNotAllowed},
		{http.MethodGet, "/report", http.StatusBadRequest},
		{http.MethodGet, "/report?workspace_id=ws-missing", http.StatusNotFound},
		{http.MethodGet, "/report?workspace_id=" + fresh, http.StatusNotFound},
		{http.MethodGet, "/report?workspace_id=" + id + "&format=pdf", http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.HandleReport(rec, httptest.NewRequest(tc.method, tc.target, nil))
		assert.Equal(t, tc.status, rec.Code, tc.target)
	}
}

func TestHandleReportFallsBackToArchive(t *testing.T) {
	archive := report.NewMemoryStore()
	svc, id := readyWorkspace(t, archive)
	h := NewReportHandler(svc, archive)
	require.NoError(t, svc.Delete(id))

	rec := httptest.NewRecorder()
	h.HandleReport(rec, httptest.NewRequest(http.MethodGet, "/report?workspace_id="+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Lead times doubled.")
	assert.Contains(t, rec.Body.String(), "Fake hypothesis")

	rec = httptest.NewRecorder()
	h.HandleReport(rec, httptest.NewRequest(http.MethodGet, "/report?workspace_id=ws-missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleArchive(t *testing.T) {
	archive := report.NewMemoryStore()
	_, id := readyWorkspace(t, archive)
	h := NewReportHandler(nil, archive)

	rec := httptest.NewRecorder()
	h.HandleArchive(rec, httptest.NewRequest(http.MethodGet, "/report/archive?workspace_id="+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Files []string `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, []string{report.ObjectJSON, report.ObjectMarkdown}, listing.Files)

	rec = httptest.NewRecorder()
	h.HandleArchive(rec, httptest.NewRequest(http.MethodGet, "/report/archive?workspace_id="+id+"&name="+report.ObjectMarkdown, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/markdown"))
	assert.Contains(t, rec.Body.String(), "# Diagnostic Findings")

	cases := []struct {
		target string
		status int
	}{
		{"/report/archive", http.StatusBadRequest},
		{"/report/archive?workspace_id=" + id + "&name=secrets.txt", http.StatusBadRequest},
		{"/report/archive?workspace_id=ws-missing&name=" + report.ObjectJSON, http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.HandleArchive(rec, httptest.NewRequest(http.MethodGet, tc.target, nil))
		assert.Equal(t, tc.status, rec.Code, tc.target)
	}

	rec = httptest.NewRecorder()
	NewReportHandler(nil, nil).HandleArchive(rec, httptest.NewRequest(http.MethodGet, "/report/archive?workspace_id="+id, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
