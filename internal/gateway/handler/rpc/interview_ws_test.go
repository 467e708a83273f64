package rpc

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgdiag/internal/llm"
	"orgdiag/internal/project"
	"orgdiag/internal/wizard"
)

func dialInterview(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readOut(t *testing.T, conn *websocket.Conn) interviewWSOutbound {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var out interviewWSOutbound
	require.NoError(t, conn.ReadJSON(&out))
	return out
}

func TestInterviewWebsocket(t *testing.T) {
	fake := llm.NewFakeClient().QueueTurn("Opening question?").QueueTurn("Follow-up?")
	srv, svc := newTestServer(t, fake)
	id := svc.Create().WorkspaceID
	v, err := svc.AddStakeholder(id, "Dana")
	require.NoError(t, err)
	shID := v.State.Stakeholders[0].ID
	_, err = svc.NavigateTo(id, wizard.InterviewHub)
	require.NoError(t, err)
	_, err = svc.StartInterview(context.Background(), id, shID)
	require.NoError(t, err)

	conn := dialInterview(t, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/interview?workspace_id="+id)

	out := readOut(t, conn)
	assert.Equal(t, "subscribed", out.Type)
	require.NotNil(t, out.Session)
	assert.Equal(t, "Opening question?", out.Session.History[0].Text)

	require.NoError(t, conn.WriteJSON(interviewWSInbound{Type: "send", Input: "   "}))
	out = readOut(t, conn)
	assert.Equal(t, "error", out.Type)
	assert.Equal(t, "invalid_argument", out.Code)

	require.NoError(t, conn.WriteJSON(interviewWSInbound{Type: "send", Input: "Onboarding is slow."}))
	assert.Equal(t, "pending", readOut(t, conn).Type)
	out = readOut(t, conn)
	assert.Equal(t, "assistant_message", out.Type)
	assert.Equal(t, "Follow-up?", out.AssistantMessage)

	require.NoError(t, conn.WriteJSON(interviewWSInbound{Type: "ping"}))
	assert.Equal(t, "pong", readOut(t, conn).Type)

	require.NoError(t, conn.WriteJSON(interviewWSInbound{Type: "finish"}))
	out = readOut(t, conn)
	require.Equal(t, "finished", out.Type)
	require.NotNil(t, out.View)
	assert.Equal(t, project.StatusCompleted, out.View.State.Stakeholders[0].Status)
	assert.Equal(t, "Consultant: Opening question?\n\nStakeholder: Onboarding is slow.\n\nConsultant: Follow-up?",
		out.View.State.Stakeholders[0].Transcript)

	require.NoError(t, conn.WriteJSON(interviewWSInbound{Type: "cancel"}))
	out = readOut(t, conn)
	assert.Equal(t, "session_ended", out.Type)
	assert.Equal(t, "failed_precondition", out.Code)
	assertClosed(t, conn)
}

func assertClosed(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestInterviewWebsocketStaysWithItsStakeholder(t *testing.T) {
	fake := llm.NewFakeClient().QueueTurn("Dana, what slows you down?").QueueTurn("Omar, what slows you down?")
	srv, svc := newTestServer(t, fake)
	id := svc.Create().WorkspaceID
	v, err := svc.AddStakeholder(id, "Dana")
	require.NoError(t, err)
	v, err = svc.AddStakeholder(id, "Omar")
	require.NoError(t, err)
	dana, omar := v.State.Stakeholders[0].ID, v.State.Stakeholders[1].ID
	_, err = svc.NavigateTo(id, wizard.InterviewHub)
	require.NoError(t, err)
	_, err = svc.StartInterview(context.Background(), id, dana)
	require.NoError(t, err)

	conn := dialInterview(t, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/interview?workspace_id="+id)
	out := readOut(t, conn)
	require.Equal(t, "subscribed", out.Type)
	assert.Equal(t, dana, out.Session.StakeholderID)

	_, err = svc.FinishInterview(id)
	require.NoError(t, err)
	_, err = svc.StartInterview(context.Background(), id, omar)
	require.NoError(t, err)

	require.NoError(t, conn.WriteJSON(interviewWSInbound{Type: "send", Input: "answer meant for Dana"}))
	assert.Equal(t, "pending", readOut(t, conn).Type)
	out = readOut(t, conn)
	assert.Equal(t, "session_ended", out.Type)
	assertClosed(t, conn)

	v, err = svc.Get(id)
	require.NoError(t, err)
	require.NotNil(t, v.Session)
	assert.Equal(t, omar, v.Session.StakeholderID)
	require.Len(t, v.Session.History, 1)
	assert.Equal(t, "Omar, what slows you down?", v.Session.History[0].Text)
	assert.Len(t, fake.TurnCalls(), 2)
}

func TestInterviewWebsocketCannotFinishNextInterview(t *testing.T) {
	srv, svc := newTestServer(t, llm.NewFakeClient())
	id := svc.Create().WorkspaceID
	v, err := svc.AddStakeholder(id, "Dana")
	require.NoError(t, err)
	v, err = svc.AddStakeholder(id, "Omar")
	require.NoError(t, err)
	dana, omar := v.State.Stakeholders[0].ID, v.State.Stakeholders[1].ID
	_, err = svc.NavigateTo(id, wizard.InterviewHub)
	require.NoError(t, err)
	_, err = svc.StartInterview(context.Background(), id, dana)
	require.NoError(t, err)

	conn := dialInterview(t, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/interview?workspace_id="+id)
	require.Equal(t, "subscribed", readOut(t, conn).Type)

	_, err = svc.CancelInterview(id)
	require.NoError(t, err)
	_, err = svc.StartInterview(context.Background(), id, omar)
	require.NoError(t, err)

	require.NoError(t, conn.WriteJSON(interviewWSInbound{Type: "finish"}))
	assert.Equal(t, "session_ended", readOut(t, conn).Type)
	assertClosed(t, conn)

	v, err = svc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, wizard.InterviewSession, v.Step)
	assert.Equal(t, omar, v.ActiveStakeholderID)
	assert.Equal(t, project.StatusInProgress, v.State.Stakeholders[1].Status)
	assert.Equal(t, project.StatusPending, v.State.Stakeholders[0].Status)
}

func TestInterviewWebsocketNeedsSession(t *testing.T) {
	srv, svc := newTestServer(t, llm.NewFakeClient())
	id := svc.Create().WorkspaceID

	for target, status := range map[string]int{
		"/ws/interview":                         http.StatusBadRequest,
		"/ws/interview?workspace_id=ws-missing": http.StatusNotFound,
		"/ws/interview?workspace_id=" + id:      http.StatusConflict,
	} {
		resp, err := http.Get(srv.URL + target)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, status, resp.StatusCode, target)
	}
}
