package llm

import (
	"context"
	"encoding/json"

	genai "google.golang.org/genai"
)

// PromptHook defines callbacks around model requests.
type PromptHook interface {
	Before(ctx context.Context, op, prompt string)
	After(ctx context.Context, op string, raw json.RawMessage, err error)
}

type ctxKeyHook struct{}
type ctxKeyOperation struct{}

// WithOperation tags the context with a caller-chosen operation name
// (for example "interview_turn:<stakeholder>").
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, ctxKeyOperation{}, op)
}

// OperationFrom returns the operation stored in the context, or def.
func OperationFrom(ctx context.Context, def string) string {
	if v, ok := ctx.Value(ctxKeyOperation{}).(string); ok && v != "" {
		return v
	}
	return def
}

// WithPromptHook attaches a PromptHook to the context.
func WithPromptHook(ctx context.Context, hook PromptHook) context.Context {
	return context.WithValue(ctx, ctxKeyHook{}, hook)
}

// HookFrom returns the hook stored in the context.
func HookFrom(ctx context.Context) PromptHook {
	if h, ok := ctx.Value(ctxKeyHook{}).(PromptHook); ok {
		return h
	}
	return nil
}

// WithHooks calls HookFrom(ctx).Before/After around every request.
// If no hook is present in the context, it is a no-op.
func WithHooks() Middleware {
	return func(next Model) Model {
		return &funcModel{
			next: next,
			turn: func(ctx context.Context, sys string, history []Turn) (string, error) {
				op := OperationFrom(ctx, OpTurn)
				hook := HookFrom(ctx)
				if hook != nil {
					hook.Before(ctx, op, sys)
				}
				out, err := next.GenerateTurn(ctx, sys, history)
				if hook != nil {
					raw, _ := json.Marshal(out)
					hook.After(ctx, op, raw, err)
				}
				return out, err
			},
			structured: func(ctx context.Context, prompt string, schema *genai.Schema) (json.RawMessage, error) {
				op := OperationFrom(ctx, OpStructured)
				hook := HookFrom(ctx)
				if hook != nil {
					hook.Before(ctx, op, prompt)
				}
				raw, err := next.GenerateStructured(ctx, prompt, schema)
				if hook != nil {
					hook.After(ctx, op, raw, err)
				}
				return raw, err
			},
		}
	}
}
