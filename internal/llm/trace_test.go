package llm

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceHookLogsPromptAndReply(t *testing.T) {
	var buf bytes.Buffer
	hook := NewTraceHook(log.New(&buf, "", 0), 0)
	fake := NewFakeClient().QueueTurn("What slows onboarding?")
	m := Wrap(fake, WithHooks())

	ctx := WithPromptHook(WithOperation(context.Background(), "interview_turn:s1"), hook)
	_, err := m.GenerateTurn(ctx, "You are a consultant.", []Turn{{Role: RoleUser, Text: "hello"}})
	require.NoError(t, err)

	logged := buf.String()
	assert.Contains(t, logged, "llm trace interview_turn:s1 prompt")
	assert.Contains(t, logged, "llm trace interview_turn:s1 reply")
	assert.Contains(t, logged, "What slows onboarding?")
}

func TestTraceHookClipsAndReportsErrors(t *testing.T) {
	var buf bytes.Buffer
	hook := NewTraceHook(log.New(&buf, "", 0), 8)

	hook.Before(context.Background(), "synthesis", strings.Repeat("x", 50))
	assert.Contains(t, buf.String(), "(50 bytes)")
	assert.Contains(t, buf.String(), "xxxxxxxx...(truncated)")
	assert.NotContains(t, buf.String(), strings.Repeat("x", 9))

	buf.Reset()
	hook.After(context.Background(), "synthesis", nil, errors.New("quota exceeded"))
	assert.Equal(t, "llm trace synthesis error: quota exceeded\n", buf.String())
}
