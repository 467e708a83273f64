package handler

import (
	"errors"
	"net/http"
	"strings"

	"orgdiag/internal/project"
	"orgdiag/internal/report"
	"orgdiag/internal/util/jsonutil"
	"orgdiag/internal/workspace"
)

type ReportHandler struct {
	svc     *workspace.Service
	archive report.Store
}

// NewReportHandler serves reports from live workspaces. When archive is set,
// reports of workspaces no longer in memory are read back from it.
func NewReportHandler(svc *workspace.Service, archive report.Store) *ReportHandler {
	return &ReportHandler{svc: svc, archive: archive}
}

// HandleReport exports the last successful report of a workspace as
// Markdown, HTML or JSON.
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	workspaceID := strings.TrimSpace(r.URL.Query().Get("workspace_id"))
	if workspaceID == "" {
		http.Error(w, "workspace_id is required", http.StatusBadRequest)
		return
	}
	problem, rep, err := h.lookup(r, workspaceID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, workspace.ErrWorkspaceNotFound) || errors.Is(err, workspace.ErrNoReport) || errors.Is(err, report.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	switch format {
	case "", "md", "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(report.Markdown(problem, rep)))
	case "html":
		page, err := report.HTML("Diagnostic Findings", report.Markdown(problem, rep))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	case "json":
		body, err := jsonutil.MarshalNoEscape(map[string]any{
			"workspace_id":     workspaceID,
			"problemStatement": problem,
			"report":           rep,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	default:
		http.Error(w, "unsupported format: "+format, http.StatusBadRequest)
	}
}

// lookup prefers the live workspace. A workspace that was evicted or deleted
// falls back to its archived copy.
func (h *ReportHandler) lookup(r *http.Request, workspaceID string) (string, project.Report, error) {
	problem, rep, err := h.svc.Report(workspaceID)
	if !errors.Is(err, workspace.ErrWorkspaceNotFound) || h.archive == nil {
		return problem, rep, err
	}
	doc, aerr := report.Load(r.Context(), h.archive, workspaceID)
	if aerr != nil {
		if errors.Is(aerr, report.ErrNotFound) {
			return "", project.Report{}, err
		}
		return "", project.Report{}, aerr
	}
	return doc.ProblemStatement, doc.Report, nil
}

// HandleArchive lists the archived files of a workspace, or returns one of
// them when name is given.
func (h *ReportHandler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.archive == nil {
		http.Error(w, "report archive is not configured", http.StatusNotFound)
		return
	}
	workspaceID := strings.TrimSpace(r.URL.Query().Get("workspace_id"))
	if workspaceID == "" {
		http.Error(w, "workspace_id is required", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		names, err := h.archive.List(r.Context(), workspaceID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		body, err := jsonutil.MarshalNoEscape(map[string]any{"workspace_id": workspaceID, "files": names})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
		return
	}

	var contentType string
	switch name {
	case report.ObjectJSON:
		contentType = "application/json"
	case report.ObjectMarkdown:
		contentType = "text/markdown; charset=utf-8"
	default:
		http.Error(w, "unknown archive file: "+name, http.StatusBadRequest)
		return
	}
	data, err := h.archive.Get(r.Context(), workspaceID, name)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, report.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}
