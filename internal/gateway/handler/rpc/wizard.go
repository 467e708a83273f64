package rpc

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"orgdiag/internal/project"
	"orgdiag/internal/workspace"
)

// WizardServiceName is the fully-qualified Connect service name.
const WizardServiceName = "orgdiag.v1.WizardService"

// Procedure paths.
const (
	WizardCreateWorkspaceProcedure       = "/" + WizardServiceName + "/CreateWorkspace"
	WizardGetWorkspaceProcedure          = "/" + WizardServiceName + "/GetWorkspace"
	WizardDeleteWorkspaceProcedure       = "/" + WizardServiceName + "/DeleteWorkspace"
	WizardSetProblemStatementProcedure   = "/" + WizardServiceName + "/SetProblemStatement"
	WizardAddEntityProcedure             = "/" + WizardServiceName + "/AddEntity"
	WizardRenameEntityProcedure          = "/" + WizardServiceName + "/RenameEntity"
	WizardRemoveEntityProcedure          = "/" + WizardServiceName + "/RemoveEntity"
	WizardAddStakeholderProcedure        = "/" + WizardServiceName + "/AddStakeholder"
	WizardRenameStakeholderProcedure     = "/" + WizardServiceName + "/RenameStakeholder"
	WizardRemoveStakeholderProcedure     = "/" + WizardServiceName + "/RemoveStakeholder"
	WizardToggleAssociationProcedure     = "/" + WizardServiceName + "/ToggleAssociation"
	WizardUpdateInterviewConfigProcedure = "/" + WizardServiceName + "/UpdateInterviewConfig"
	WizardNextProcedure                  = "/" + WizardServiceName + "/Next"
	WizardBackProcedure                  = "/" + WizardServiceName + "/Back"
	WizardNavigateToProcedure            = "/" + WizardServiceName + "/NavigateTo"
	WizardStartInterviewProcedure        = "/" + WizardServiceName + "/StartInterview"
	WizardSendMessageProcedure           = "/" + WizardServiceName + "/SendMessage"
	WizardFinishInterviewProcedure       = "/" + WizardServiceName + "/FinishInterview"
	WizardCancelInterviewProcedure       = "/" + WizardServiceName + "/CancelInterview"
	WizardSetVoiceProcedure              = "/" + WizardServiceName + "/SetVoice"
	WizardOpenSynthesisProcedure         = "/" + WizardServiceName + "/OpenSynthesis"
	WizardSynthesizeProcedure            = "/" + WizardServiceName + "/Synthesize"
)

type WizardHandler struct {
	svc *workspace.Service
}

func NewWizardHandler(svc *workspace.Service) *WizardHandler {
	return &WizardHandler{svc: svc}
}

// unary adapts an action returning a View into a Connect handler. Model
// failures are reported inside the response, not as call errors.
func unary[Req any](procedure string, fn func(context.Context, *Req) (workspace.View, error), opts []connect.HandlerOption) *connect.Handler {
	return connect.NewUnaryHandler(procedure, func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[ViewResponse], error) {
		v, err := fn(ctx, req.Msg)
		if err != nil && !modelFailure(err) {
			return nil, toConnectError(err)
		}
		out := &ViewResponse{View: v}
		if err != nil {
			out.Error = err.Error()
		}
		return connect.NewResponse(out), nil
	}, opts...)
}

func requireWorkspace(id string) error {
	if strings.TrimSpace(id) == "" {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("workspace_id is required"))
	}
	return nil
}

func parseCategory(raw string) (project.Category, error) {
	c, err := project.ParseCategory(raw)
	if err != nil {
		return 0, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return c, nil
}

// NewWizardServiceHandler builds the HTTP handler for every wizard
// procedure. It returns the path to mount it on.
func NewWizardServiceHandler(h *WizardHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux := http.NewServeMux()
	handle := func(procedure string, handler *connect.Handler) { mux.Handle(procedure, handler) }

	handle(WizardCreateWorkspaceProcedure, unary(WizardCreateWorkspaceProcedure, h.CreateWorkspace, opts))
	handle(WizardGetWorkspaceProcedure, unary(WizardGetWorkspaceProcedure, h.GetWorkspace, opts))
	handle(WizardDeleteWorkspaceProcedure, connect.NewUnaryHandler(WizardDeleteWorkspaceProcedure, h.DeleteWorkspace, opts...))
	handle(WizardSetProblemStatementProcedure, unary(WizardSetProblemStatementProcedure, h.SetProblemStatement, opts))
	handle(WizardAddEntityProcedure, unary(WizardAddEntityProcedure, h.AddEntity, opts))
	handle(WizardRenameEntityProcedure, unary(WizardRenameEntityProcedure, h.RenameEntity, opts))
	handle(WizardRemoveEntityProcedure, unary(WizardRemoveEntityProcedure, h.RemoveEntity, opts))
	handle(WizardAddStakeholderProcedure, unary(WizardAddStakeholderProcedure, h.AddStakeholder, opts))
	handle(WizardRenameStakeholderProcedure, unary(WizardRenameStakeholderProcedure, h.RenameStakeholder, opts))
	handle(WizardRemoveStakeholderProcedure, unary(WizardRemoveStakeholderProcedure, h.RemoveStakeholder, opts))
	handle(WizardToggleAssociationProcedure, unary(WizardToggleAssociationProcedure, h.ToggleAssociation, opts))
	handle(WizardUpdateInterviewConfigProcedure, unary(WizardUpdateInterviewConfigProcedure, h.UpdateInterviewConfig, opts))
	handle(WizardNextProcedure, unary(WizardNextProcedure, h.Next, opts))
	handle(WizardBackProcedure, unary(WizardBackProcedure, h.Back, opts))
	handle(WizardNavigateToProcedure, unary(WizardNavigateToProcedure, h.NavigateTo, opts))
	handle(WizardStartInterviewProcedure, unary(WizardStartInterviewProcedure, h.StartInterview, opts))
	handle(WizardSendMessageProcedure, unary(WizardSendMessageProcedure, h.SendMessage, opts))
	handle(WizardFinishInterviewProcedure, unary(WizardFinishInterviewProcedure, h.FinishInterview, opts))
	handle(WizardCancelInterviewProcedure, unary(WizardCancelInterviewProcedure, h.CancelInterview, opts))
	handle(WizardSetVoiceProcedure, unary(WizardSetVoiceProcedure, h.SetVoice, opts))
	handle(WizardOpenSynthesisProcedure, unary(WizardOpenSynthesisProcedure, h.OpenSynthesis, opts))
	handle(WizardSynthesizeProcedure, unary(WizardSynthesizeProcedure, h.Synthesize, opts))

	return "/" + WizardServiceName + "/", mux
}

func (h *WizardHandler) CreateWorkspace(_ context.Context, _ *CreateWorkspaceRequest) (workspace.View, error) {
	return h.svc.Create(), nil
}

func (h *WizardHandler) GetWorkspace(_ context.Context, msg *WorkspaceRequest) (workspace.View, error) {
	if err := requireWorkspace(msg.WorkspaceID); err != nil {
		return workspace.View{}, err
	}
	return h.svc.Get(msg.WorkspaceID)
}

func (h *WizardHandler) DeleteWorkspace(_ context.Context, req *connect.Request[WorkspaceRequest]) (*connect.Response[DeleteWorkspaceResponse], error) {
	if err := requireWorkspace(req.Msg.WorkspaceID); err != nil {
		return nil, err
	}
	if err := h.svc.Delete(req.Msg.WorkspaceID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DeleteWorkspaceResponse{Deleted: true}), nil
}

func (h *WizardHandler) SetProblemStatement(_ context.Context, msg *ProblemStatementRequest) (workspace.View, error) {
	if err := requireWorkspace(msg.WorkspaceID); err != nil {
		return workspace.View{}, err
	}
	return h.svc.SetProblemStatement(msg.WorkspaceID, msg.Text)
}

func (h *WizardHandler) AddEntity(_ context.Context, msg *EntityRequest) (workspace.View, error) {
	if err := requireWorkspace(msg.WorkspaceID); err != nil {
		return workspace.View{}, err
	}
	c, err := parseCategory(msg.Category)
	if err != nil {
		return workspace.View{}, err
	}
	return h.svc.AddEntity(msg.WorkspaceID, c, msg.Name)
}

func (h *WizardHandler) RenameEntity(_ context.Context, msg *EntityRequest) (workspace.View, error) {
	if err := requireWorkspace(msg.WorkspaceID); err != nil {
		return workspace.View{}, err
	}
	c, err := parseCategory(msg.Category)
	if err != nil {
		return workspace.View{}, err
	}
	return h.svc.RenameEntity(msg.WorkspaceID, c, msg.EntityID, msg.Name)
}

func (h *WizardHandler) RemoveEntity(_ context.Context, msg *EntityRequest) (workspace.View, error) {
	if err := requireWorkspace(msg.WorkspaceID); err != nil {
		return workspace.View{}, err
	}
	c, err := parseCategory(msg.Category)
	if err != nil {
		return workspace.View{}, err
	}
	return h.svc.RemoveEntity(msg.WorkspaceID, c, msg.EntityID)
}

func (h *WizardHandler) AddStakeholder(_ context.Context, msg *StakeholderRequest) (workspace.View, error) {
	if err := requireWorkspace(msg.WorkspaceID); err != nil {
		return workspace.View{}, err
	}
	return h.svc.AddStakeholder(msg.WorkspaceID, msg.Name)
}

func (h *WizardHandler) RenameStakeholder(_ context.Context, msg *StakeholderRequest) (workspace.View, error) {
	if err := requireWorkspace(msg.WorkspaceID); err != nil {
		return workspace.View{}, err
	}
	return h.svc.RenameStakeholder(msg.WorkspaceID, msg.StakeholderID, msg.Name)
}

func (h *WizardHandler) RemoveStakeholder(_ context.Context, msg *StakeholderRequest) (workspace.View, error) {
	if err := requireWorkspace(msg.WorkspaceID); err != nil {
		return workspace.View{}, err
	}
	return h.svc.RemoveStakeholder(msg.WorkspaceID, msg.StakeholderID)
}

func (h *WizardHandler) ToggleAssociation(_ context.Context, msg *AssociationRequest) (workspace.View, error) {
	if err := requireWorkspace(msg.WorkspaceID); err != nil {
		return workspace.View{}, err
	}
	c, err := parseCategory(msg.Category)
	if err != nil {
		return workspace.View{}, err
	}
	return h.svc.ToggleAssociation(msg.WorkspaceID, msg.StakeholderID, c, msg.EntityID)
}

func (h *WizardHandler) UpdateInterviewConfig(_ context.Context, msg *InterviewConfigRequest) (workspace.View, error) {
	if err := requireWorkspace(msg.WorkspaceID); err != nil {
		return workspace.View{}, err
	}
	return h.svc.UpdateInterviewConfig(msg.WorkspaceID, msg.Config)
}

func (h *WizardHandler) Next(_ context.Context, msg *WorkspaceRequest) (workspace.View, error) {
	if err := requireWorkspace(msg.WorkspaceID); err != nil {
		return workspace.View{}, err
	}
	return h.svc.Next(msg.WorkspaceID)
}

func (h *WizardHandler) Back(_ context.Context, msg *WorkspaceRequest) (workspace.View, error) {
	if err := requireWorkspace(msg.WorkspaceID); err != nil {
		return workspace.View{}, err
	}
	return h.svc.Back(msg.WorkspaceID)
}

func (h *WizardHandler) NavigateTo(_ context.Context, msg *NavigateRequest) (workspace.View, error) {
	if err := requireWorkspace(msg.WorkspaceID); err != nil {
		return workspace.View{}, err
	}
	return h.svc.NavigateTo(msg.WorkspaceID, msg.Step)
}

func (h *WizardHandler) StartInterview(ctx context.Context, msg *StakeholderRequest) (workspace.View, error) {
	if err := requireWorkspace(msg.WorkspaceID); err != nil {
		return workspace.View{}, err
	}
	return h.svc.StartInterview(ctx, msg.WorkspaceID, msg.StakeholderID)
}

func (h *WizardHandler) SendMessage(ctx context.Context, msg *MessageRequest) (workspace.View, error) {
	if err := requireWorkspace(msg.WorkspaceID); err != nil {
		return workspace.View{}, err
	}
	return h.svc.SendMessage(ctx, msg.WorkspaceID, msg.Text)
}

func (h *WizardHandler) FinishInterview(_ context.Context, msg *WorkspaceRequest) (workspace.View, error) {
	if err := requireWorkspace(msg.WorkspaceID); err != nil {
		return workspace.View{}, err
	}
	return h.svc.FinishInterview(msg.WorkspaceID)
}

func (h *WizardHandler) CancelInterview(_ context.Context, msg *WorkspaceRequest) (workspace.View, error) {
	if err := requireWorkspace(msg.WorkspaceID); err != nil {
		return workspace.View{}, err
	}
	return h.svc.CancelInterview(msg.WorkspaceID)
}

func (h *WizardHandler) SetVoice(_ context.Context, msg *VoiceRequest) (workspace.View, error) {
	if err := requireWorkspace(msg.WorkspaceID); err != nil {
		return workspace.View{}, err
	}
	return h.svc.SetVoiceActive(msg.WorkspaceID, msg.Active)
}

func (h *WizardHandler) OpenSynthesis(ctx context.Context, msg *WorkspaceRequest) (workspace.View, error) {
	if err := requireWorkspace(msg.WorkspaceID); err != nil {
		return workspace.View{}, err
	}
	return h.svc.OpenSynthesis(ctx, msg.WorkspaceID)
}

func (h *WizardHandler) Synthesize(ctx context.Context, msg *WorkspaceRequest) (workspace.View, error) {
	if err := requireWorkspace(msg.WorkspaceID); err != nil {
		return workspace.View{}, err
	}
	return h.svc.Synthesize(ctx, msg.WorkspaceID)
}
