package rpc

import (
	"errors"

	"connectrpc.com/connect"

	"orgdiag/internal/interview"
	"orgdiag/internal/llm"
	"orgdiag/internal/project"
	"orgdiag/internal/synthesis"
	"orgdiag/internal/workspace"
)

// modelFailure reports errors that leave the workspace usable and are shown
// inside the view instead of failing the call.
func modelFailure(err error) bool {
	var se *llm.ServiceError
	var pe *synthesis.ParseError
	return errors.As(err, &se) || errors.As(err, &pe)
}

func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		return err
	}
	switch {
	case errors.Is(err, workspace.ErrWorkspaceNotFound),
		errors.Is(err, project.ErrNotFound),
		errors.Is(err, workspace.ErrNoReport):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, project.ErrDuplicateID):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, project.ErrInvalidConfig),
		errors.Is(err, interview.ErrEmptyInput):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, interview.ErrRequestInFlight),
		errors.Is(err, synthesis.ErrSynthesisInFlight),
		errors.Is(err, interview.ErrSessionClosed),
		errors.Is(err, interview.ErrAlreadyInterview),
		errors.Is(err, project.ErrAlreadyCompleted),
		errors.Is(err, workspace.ErrNoSession),
		errors.Is(err, workspace.ErrSessionActive),
		errors.Is(err, workspace.ErrSessionEnded):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case modelFailure(err):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
