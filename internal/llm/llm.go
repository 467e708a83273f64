package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	genai "google.golang.org/genai"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message of an interview conversation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Model is the hosted language-model capability.
type Model interface {
	Name() string
	// GenerateTurn returns the next assistant utterance as plain text.
	GenerateTurn(ctx context.Context, systemInstruction string, history []Turn) (string, error)
	// GenerateStructured returns a JSON document conforming to schema.
	GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema) (json.RawMessage, error)
	Close() error
}

// Operation names used for logging, hooks and metrics.
const (
	OpTurn       = "interview_turn"
	OpStructured = "synthesis"
)

var ErrEmptyResponse = errors.New("llm: empty response from model")

// ServiceError reports a failed call to the model capability (network, auth,
// quota, empty answer). It is surfaced to callers, never retried.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string { return fmt.Sprintf("llm %s: %v", e.Op, e.Err) }
func (e *ServiceError) Unwrap() error { return e.Err }

// AsServiceError wraps err unless it already is a ServiceError.
func AsServiceError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return err
	}
	return &ServiceError{Op: op, Err: err}
}
