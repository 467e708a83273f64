package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	genai "google.golang.org/genai"
)

// FakeClient returns deterministic replies for offline runs and tests.
// Scripted replies and errors are consumed in order; once the script is
// exhausted it falls back to canned output.
type FakeClient struct {
	mu          sync.Mutex
	turns       []fakeReply
	structured  []fakeReply
	turnCalls   []FakeTurnCall
	promptCalls []string
	// Gate, when set, blocks each call until a value is received or the
	// context ends. Tests use it to hold a request in flight.
	Gate chan struct{}
}

type fakeReply struct {
	text string
	err  error
}

// FakeTurnCall records one GenerateTurn invocation.
type FakeTurnCall struct {
	SystemInstruction string
	History           []Turn
}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

// QueueTurn scripts the next GenerateTurn reply.
func (f *FakeClient) QueueTurn(text string) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns = append(f.turns, fakeReply{text: text})
	return f
}

// QueueTurnError scripts the next GenerateTurn failure.
func (f *FakeClient) QueueTurnError(err error) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns = append(f.turns, fakeReply{err: err})
	return f
}

// QueueStructured scripts the next GenerateStructured payload.
func (f *FakeClient) QueueStructured(raw string) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.structured = append(f.structured, fakeReply{text: raw})
	return f
}

func (f *FakeClient) QueueStructuredError(err error) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.structured = append(f.structured, fakeReply{err: err})
	return f
}

// TurnCalls returns the recorded GenerateTurn calls.
func (f *FakeClient) TurnCalls() []FakeTurnCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeTurnCall, len(f.turnCalls))
	copy(out, f.turnCalls)
	return out
}

// Prompts returns the prompts sent to GenerateStructured.
func (f *FakeClient) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.promptCalls...)
}

func (f *FakeClient) wait(ctx context.Context) error {
	if f.Gate == nil {
		return nil
	}
	select {
	case <-f.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *FakeClient) GenerateTurn(ctx context.Context, sys string, history []Turn) (string, error) {
	f.mu.Lock()
	f.turnCalls = append(f.turnCalls, FakeTurnCall{SystemInstruction: sys, History: append([]Turn(nil), history...)})
	var next *fakeReply
	if len(f.turns) > 0 {
		next = &f.turns[0]
		f.turns = f.turns[1:]
	}
	n := len(f.turnCalls)
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return "", &ServiceError{Op: OpTurn, Err: err}
	}
	if next != nil {
		if next.err != nil {
			return "", AsServiceError(OpTurn, next.err)
		}
		return next.text, nil
	}
	last := ""
	if len(history) > 0 {
		last = strings.TrimSpace(history[len(history)-1].Text)
	}
	return fmt.Sprintf("Question %d: could you say more about %q?", n, last), nil
}

func (f *FakeClient) GenerateStructured(ctx context.Context, prompt string, _ *genai.Schema) (json.RawMessage, error) {
	f.mu.Lock()
	f.promptCalls = append(f.promptCalls, prompt)
	var next *fakeReply
	if len(f.structured) > 0 {
		next = &f.structured[0]
		f.structured = f.structured[1:]
	}
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return nil, &ServiceError{Op: OpStructured, Err: err}
	}
	if next != nil {
		if next.err != nil {
			return nil, AsServiceError(OpStructured, next.err)
		}
		return json.RawMessage(next.text), nil
	}
	return json.RawMessage(`{"executiveSummary":"Offline synthesis placeholder.","hypotheses":[{"title":"Fake hypothesis","description":"Generated without a model.","confidence":0.5,"evidenceSource":["fake"]}]}`), nil
}
