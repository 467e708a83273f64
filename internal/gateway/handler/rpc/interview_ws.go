package rpc

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"connectrpc.com/connect"
	"github.com/gorilla/websocket"

	"orgdiag/internal/interview"
	"orgdiag/internal/llm"
	"orgdiag/internal/workspace"
)

// InterviewHandler streams the active interview of a workspace over a
// websocket.
type InterviewHandler struct {
	svc *workspace.Service
}

func NewInterviewHandler(svc *workspace.Service) *InterviewHandler {
	return &InterviewHandler{svc: svc}
}

const (
	interviewWSWriteWait = 10 * time.Second
	interviewWSPongWait  = 60 * time.Second
	interviewWSPingEvery = (interviewWSPongWait * 9) / 10
)

var interviewWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type interviewWSInbound struct {
	Type   string `json:"type"`
	Input  string `json:"input,omitempty"`
	Active bool   `json:"active,omitempty"`
}

type interviewWSOutbound struct {
	Type             string              `json:"type"`
	WorkspaceID      string              `json:"workspaceId,omitempty"`
	AssistantMessage string              `json:"assistantMessage,omitempty"`
	Session          *interview.Snapshot `json:"session,omitempty"`
	View             *workspace.View     `json:"view,omitempty"`
	Code             string              `json:"code,omitempty"`
	Message          string              `json:"message,omitempty"`
}

func (h *InterviewHandler) HandleInterviewWS(w http.ResponseWriter, r *http.Request) {
	workspaceID := strings.TrimSpace(r.URL.Query().Get("workspace_id"))
	if workspaceID == "" {
		http.Error(w, "workspace_id is required", http.StatusBadRequest)
		return
	}
	bound, err := h.svc.Attach(workspaceID)
	if err != nil {
		status := http.StatusConflict
		if errors.Is(err, workspace.ErrWorkspaceNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := interviewWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(interviewWSPongWait)); err != nil {
		log.Printf("interview ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(interviewWSPongWait))
	})

	writeCh := make(chan interviewWSOutbound, 32)
	writerDone := make(chan struct{})
	closing := make(chan struct{})
	var closeOnce sync.Once
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(interviewWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-closing:
				flushInterviewWS(conn, writeCh)
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
					time.Now().Add(interviewWSWriteWait))
				_ = conn.Close()
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(interviewWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(interviewWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	sess := bound.Session()
	snap := sess.Snapshot()
	pushInterviewWS(writeCh, interviewWSOutbound{
		Type:        "subscribed",
		WorkspaceID: workspaceID,
		Session:     &snap,
	})

	// The socket belongs to one stakeholder's session. Once that session is
	// gone it is closed rather than reused for the next interview.
	pushError := func(err error) {
		if errors.Is(err, workspace.ErrSessionEnded) {
			pushInterviewWS(writeCh, interviewWSOutbound{
				Type:        "session_ended",
				WorkspaceID: workspaceID,
				Code:        connect.CodeFailedPrecondition.String(),
				Message:     err.Error(),
			})
			closeOnce.Do(func() { close(closing) })
			return
		}
		pushInterviewWS(writeCh, interviewWSOutbound{
			Type:    "error",
			Code:    connect.CodeOf(toConnectError(err)).String(),
			Message: err.Error(),
		})
	}

	for {
		var in interviewWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		msgType := strings.ToLower(strings.TrimSpace(in.Type))
		switch msgType {
		case "":
			pushInterviewWS(writeCh, interviewWSOutbound{Type: "error", Code: "invalid_argument", Message: "type is required"})
		case "ping":
			pushInterviewWS(writeCh, interviewWSOutbound{Type: "pong"})
		case "send":
			if strings.TrimSpace(in.Input) == "" {
				pushError(interview.ErrEmptyInput)
				continue
			}
			if sess.InFlight() {
				pushError(interview.ErrRequestInFlight)
				continue
			}
			pushInterviewWS(writeCh, interviewWSOutbound{Type: "pending", WorkspaceID: workspaceID})
			go func(input string) {
				v, err := bound.Send(ctx, input)
				if err != nil && !modelFailure(err) {
					pushError(err)
					return
				}
				out := interviewWSOutbound{Type: "assistant_message", WorkspaceID: workspaceID, Session: v.Session}
				if err != nil {
					out.Type = "turn_failed"
					out.Code = connect.CodeUnavailable.String()
					out.Message = err.Error()
				} else if v.Session != nil {
					out.AssistantMessage = lastModelTurn(v.Session.History)
				}
				pushInterviewWS(writeCh, out)
			}(in.Input)
		case "voice":
			v, err := bound.SetVoiceActive(in.Active)
			if err != nil {
				pushError(err)
				continue
			}
			pushInterviewWS(writeCh, interviewWSOutbound{Type: "voice_ack", WorkspaceID: workspaceID, Session: v.Session})
		case "finish":
			v, err := bound.Finish()
			if err != nil {
				pushError(err)
				continue
			}
			pushInterviewWS(writeCh, interviewWSOutbound{Type: "finished", WorkspaceID: workspaceID, View: &v})
		case "cancel":
			v, err := bound.Cancel()
			if err != nil {
				pushError(err)
				continue
			}
			pushInterviewWS(writeCh, interviewWSOutbound{Type: "cancelled", WorkspaceID: workspaceID, View: &v})
		default:
			pushInterviewWS(writeCh, interviewWSOutbound{Type: "error", Code: "invalid_argument", Message: "unsupported type: " + msgType})
		}
	}
}

func lastModelTurn(history []llm.Turn) string {
	if n := len(history); n > 0 && history[n-1].Role == llm.RoleModel {
		return history[n-1].Text
	}
	return ""
}

// flushInterviewWS writes whatever is still queued.
func flushInterviewWS(conn *websocket.Conn, writeCh chan interviewWSOutbound) {
	for {
		select {
		case out := <-writeCh:
			if err := conn.SetWriteDeadline(time.Now().Add(interviewWSWriteWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(out); err != nil {
				return
			}
		default:
			return
		}
	}
}

func pushInterviewWS(writeCh chan interviewWSOutbound, out interviewWSOutbound) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
