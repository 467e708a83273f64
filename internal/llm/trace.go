package llm

import (
	"context"
	"encoding/json"
	"log"
)

const defaultTraceLimit = 2000

// TraceHook is a PromptHook that logs each prompt and the raw reply.
type TraceHook struct {
	logger *log.Logger
	limit  int
}

// NewTraceHook logs through logger, or the standard logger when nil. Texts
// longer than limit bytes are cut; limit <= 0 uses a default.
func NewTraceHook(logger *log.Logger, limit int) *TraceHook {
	if logger == nil {
		logger = log.Default()
	}
	if limit <= 0 {
		limit = defaultTraceLimit
	}
	return &TraceHook{logger: logger, limit: limit}
}

func (h *TraceHook) Before(_ context.Context, op, prompt string) {
	h.logger.Printf("llm trace %s prompt (%d bytes):\n%s", op, len(prompt), clip(prompt, h.limit))
}

func (h *TraceHook) After(_ context.Context, op string, raw json.RawMessage, err error) {
	if err != nil {
		h.logger.Printf("llm trace %s error: %v", op, err)
		return
	}
	h.logger.Printf("llm trace %s reply (%d bytes):\n%s", op, len(raw), clip(string(raw), h.limit))
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
