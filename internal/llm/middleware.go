package llm

import (
	"context"
	"encoding/json"
	"log"

	genai "google.golang.org/genai"
)

// Middleware decorates a Model to inject cross-cutting concerns
// (rate limiting, logging, hooks, metrics).
type Middleware func(Model) Model

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Model, mws ...Middleware) Model {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			out = mws[i](out)
		}
	}
	return out
}

// funcModel lets a middleware override only the calls it cares about.
type funcModel struct {
	next       Model
	turn       func(ctx context.Context, sys string, history []Turn) (string, error)
	structured func(ctx context.Context, prompt string, schema *genai.Schema) (json.RawMessage, error)
	close      func() error
}

func (m *funcModel) Name() string { return m.next.Name() }

func (m *funcModel) Close() error {
	if m.close != nil {
		return m.close()
	}
	return m.next.Close()
}

func (m *funcModel) GenerateTurn(ctx context.Context, sys string, history []Turn) (string, error) {
	if m.turn != nil {
		return m.turn(ctx, sys, history)
	}
	return m.next.GenerateTurn(ctx, sys, history)
}

func (m *funcModel) GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema) (json.RawMessage, error) {
	if m.structured != nil {
		return m.structured(ctx, prompt, schema)
	}
	return m.next.GenerateStructured(ctx, prompt, schema)
}

// -------- Logging --------

// WithLogging logs request size and errors. Provide a custom logger or nil
// to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next Model) Model {
		return &funcModel{
			next: next,
			turn: func(ctx context.Context, sys string, history []Turn) (string, error) {
				size := len(sys)
				for _, t := range history {
					size += len(t.Text)
				}
				logger.Printf("LLM request (%s): %d turns, %d bytes", OperationFrom(ctx, OpTurn), len(history), size)
				out, err := next.GenerateTurn(ctx, sys, history)
				if err != nil {
					logger.Printf("LLM error (%s): %v", OperationFrom(ctx, OpTurn), err)
				}
				return out, err
			},
			structured: func(ctx context.Context, prompt string, schema *genai.Schema) (json.RawMessage, error) {
				logger.Printf("LLM request (%s): %d bytes", OperationFrom(ctx, OpStructured), len(prompt))
				raw, err := next.GenerateStructured(ctx, prompt, schema)
				if err != nil {
					logger.Printf("LLM error (%s): %v", OperationFrom(ctx, OpStructured), err)
				}
				return raw, err
			},
		}
	}
}
