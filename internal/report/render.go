package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"

	"orgdiag/internal/project"
)

// Markdown renders a synthesized report as a Markdown document.
func Markdown(problem string, rep project.Report) string {
	var b strings.Builder
	b.WriteString("# Diagnostic Findings\n\n")
	if p := strings.TrimSpace(problem); p != "" {
		b.WriteString("## Problem Statement\n\n")
		b.WriteString(p)
		b.WriteString("\n\n")
	}
	b.WriteString("## Executive Summary\n\n")
	b.WriteString(strings.TrimSpace(rep.ExecutiveSummary))
	b.WriteString("\n\n")
	b.WriteString("## Hypotheses for Validation\n\n")
	if len(rep.Hypotheses) == 0 {
		b.WriteString("_No hypotheses were produced._\n")
		return b.String()
	}
	for i, h := range rep.Hypotheses {
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, strings.TrimSpace(h.Title))
		fmt.Fprintf(&b, "**Confidence:** %d%%\n\n", confidencePercent(h.Confidence))
		b.WriteString(strings.TrimSpace(h.Description))
		b.WriteString("\n\n")
		if len(h.EvidenceSource) > 0 {
			b.WriteString("Evidence:\n\n")
			for _, src := range h.EvidenceSource {
				fmt.Fprintf(&b, "- %s\n", src)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func confidencePercent(c float64) int {
	return int(c*100 + 0.5)
}

var pageTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTML renders the Markdown document into a standalone HTML page.
func HTML(title, md string) ([]byte, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(md), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	var page bytes.Buffer
	err := pageTmpl.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(body.String())})
	if err != nil {
		return nil, err
	}
	return page.Bytes(), nil
}
