package llm

import (
	"context"
	"encoding/json"
	"strings"

	genai "google.golang.org/genai"
)

// DefaultTemperature is the sampling temperature for interview turns.
const DefaultTemperature float32 = 0.7

// GeminiClient is a thin wrapper around the official genai client. It only
// performs the API calls; logging, limits and metrics come from Middleware.
type GeminiClient struct {
	cli         *genai.Client
	turnModel   string
	structModel string
	temperature float32
}

type GeminiConfig struct {
	APIKey string
	// TurnModel answers interview turns, StructuredModel writes the report.
	TurnModel       string
	StructuredModel string
	Temperature     float32
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	cc := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		cc.APIKey = key
	}
	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.TurnModel) == "" {
		cfg.TurnModel = "gemini-3-flash-preview"
	}
	if strings.TrimSpace(cfg.StructuredModel) == "" {
		cfg.StructuredModel = "gemini-3-pro-preview"
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	return &GeminiClient{
		cli:         cli,
		turnModel:   cfg.TurnModel,
		structModel: cfg.StructuredModel,
		temperature: cfg.Temperature,
	}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.turnModel + "+" + g.structModel }
func (g *GeminiClient) Close() error { return nil }

func (g *GeminiClient) GenerateTurn(ctx context.Context, systemInstruction string, history []Turn) (string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.turnModel, toContents(history), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
	})
	if err != nil {
		return "", &ServiceError{Op: OpTurn, Err: err}
	}
	txt, ok := firstText(resp)
	if !ok {
		return "", &ServiceError{Op: OpTurn, Err: ErrEmptyResponse}
	}
	return txt, nil
}

func (g *GeminiClient) GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema) (json.RawMessage, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.structModel,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		},
	)
	if err != nil {
		return nil, &ServiceError{Op: OpStructured, Err: err}
	}
	txt, ok := firstText(resp)
	if !ok {
		return nil, &ServiceError{Op: OpStructured, Err: ErrEmptyResponse}
	}
	return json.RawMessage(txt), nil
}

func toContents(history []Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		role := genai.Role(genai.RoleUser)
		if t.Role == RoleModel {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(t.Text, role))
	}
	return out
}

func firstText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil || len(c.Content.Parts) == 0 {
		return "", false
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", false
	}
	return b.String(), true
}
