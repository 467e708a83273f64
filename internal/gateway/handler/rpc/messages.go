package rpc

import (
	"orgdiag/internal/project"
	"orgdiag/internal/wizard"
	"orgdiag/internal/workspace"
)

type CreateWorkspaceRequest struct{}

type WorkspaceRequest struct {
	WorkspaceID string `json:"workspaceId"`
}

type ProblemStatementRequest struct {
	WorkspaceID string `json:"workspaceId"`
	Text        string `json:"text"`
}

type EntityRequest struct {
	WorkspaceID string `json:"workspaceId"`
	Category    string `json:"category"`
	EntityID    string `json:"entityId,omitempty"`
	Name        string `json:"name,omitempty"`
}

type StakeholderRequest struct {
	WorkspaceID   string `json:"workspaceId"`
	StakeholderID string `json:"stakeholderId,omitempty"`
	Name          string `json:"name,omitempty"`
}

type AssociationRequest struct {
	WorkspaceID   string `json:"workspaceId"`
	StakeholderID string `json:"stakeholderId"`
	Category      string `json:"category"`
	EntityID      string `json:"entityId"`
}

type InterviewConfigRequest struct {
	WorkspaceID string                  `json:"workspaceId"`
	Config      project.InterviewConfig `json:"config"`
}

type NavigateRequest struct {
	WorkspaceID string      `json:"workspaceId"`
	Step        wizard.Step `json:"step"`
}

type MessageRequest struct {
	WorkspaceID string `json:"workspaceId"`
	Text        string `json:"text"`
}

type VoiceRequest struct {
	WorkspaceID string `json:"workspaceId"`
	Active      bool   `json:"active"`
}

// ViewResponse carries the screen after an action. Error is set when the
// model failed but the workspace stayed usable.
type ViewResponse struct {
	View  workspace.View `json:"view"`
	Error string         `json:"error,omitempty"`
}

type DeleteWorkspaceResponse struct {
	Deleted bool `json:"deleted"`
}
