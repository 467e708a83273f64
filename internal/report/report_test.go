package report

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgdiag/internal/project"
)

func sampleReport() project.Report {
	return project.Report{
		ExecutiveSummary: "Approvals are the bottleneck.",
		Hypotheses: []project.Hypothesis{
			{Title: "Approval chain too long", Description: "Four sign-offs.", Confidence: 0.8, EvidenceSource: []string{"Dana", "Omar"}},
			{Title: "Vendor sprawl", Description: "Too many vendors.", Confidence: 0.35, EvidenceSource: nil},
		},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown("Lead times doubled.", sampleReport())
	assert.Contains(t, md, "## Problem Statement\n\nLead times doubled.")
	assert.Contains(t, md, "## Executive Summary\n\nApprovals are the bottleneck.")
	assert.Contains(t, md, "### 1. Approval chain too long")
	assert.Contains(t, md, "**Confidence:** 80%")
	assert.Contains(t, md, "- Dana\n- Omar\n")
	assert.Contains(t, md, "### 2. Vendor sprawl")
	assert.Contains(t, md, "**Confidence:** 35%")
}

func TestMarkdownEmptyReport(t *testing.T) {
	md := Markdown("", project.Report{})
	assert.NotContains(t, md, "Problem Statement")
	assert.Contains(t, md, "No hypotheses were produced.")
}

func TestHTML(t *testing.T) {
	page, err := HTML("Findings <draft>", Markdown("P", sampleReport()))
	require.NoError(t, err)
	s := string(page)
	assert.Contains(t, s, "<title>Findings &lt;draft&gt;</title>")
	assert.Contains(t, s, "<h1>Diagnostic Findings</h1>")
	assert.Contains(t, s, "<strong>Confidence:</strong> 80%")
	assert.Contains(t, s, "<li>Dana</li>")
}

func TestSaveToMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, Save(ctx, store, "ws-1", "P", sampleReport()))

	names, err := store.List(ctx, "ws-1")
	require.NoError(t, err)
	assert.Equal(t, []string{ObjectJSON, ObjectMarkdown}, names)

	raw, err := store.Get(ctx, "ws-1", ObjectJSON)
	require.NoError(t, err)
	var got Archived
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "P", got.ProblemStatement)
	assert.Equal(t, sampleReport().ExecutiveSummary, got.Report.ExecutiveSummary)
	assert.Len(t, got.Report.Hypotheses, 2)

	_, err = store.Get(ctx, "ws-2", ObjectJSON)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Error(t, store.Put(ctx, "", "x", nil, ""))
}

func TestLoadArchivedReport(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, Save(ctx, store, "ws-1", "P", sampleReport()))

	doc, err := Load(ctx, store, "ws-1")
	require.NoError(t, err)
	assert.Equal(t, "P", doc.ProblemStatement)
	assert.Equal(t, sampleReport(), doc.Report)

	_, err = Load(ctx, store, "ws-2")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = Load(ctx, nil, "ws-1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "ws-3", ObjectJSON, []byte("{"), "application/json"))
	_, err = Load(ctx, store, "ws-3")
	assert.Error(t, err)
}

func TestSaveWithoutStore(t *testing.T) {
	assert.NoError(t, Save(context.Background(), nil, "ws-1", "", sampleReport()))
}

func TestNewS3StoreValidatesConfig(t *testing.T) {
	_, err := NewS3Store(S3Config{})
	assert.Error(t, err)
	_, err = NewS3Store(S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	assert.Error(t, err)

	s, err := NewS3Store(S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "reports"})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", s.region)
}
