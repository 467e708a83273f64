package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgdiag/internal/llm"
)

type opsHook struct {
	ops []string
}

func (h *opsHook) Before(_ context.Context, op, _ string) { h.ops = append(h.ops, op) }

func (h *opsHook) After(context.Context, string, json.RawMessage, error) {}

func TestPromptTrace(t *testing.T) {
	hook := &opsHook{}
	model := llm.Wrap(llm.NewFakeClient(), llm.WithHooks())
	h := PromptTrace(hook, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := llm.WithOperation(r.Context(), "interview_turn:s1")
		_, err := model.GenerateTurn(ctx, "sys", nil)
		require.NoError(t, err)
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"interview_turn:s1"}, hook.ops)
}

func TestPromptTraceWithoutHook(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {})
	assert.NotNil(t, PromptTrace(nil, next))
}
