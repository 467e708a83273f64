package synthesis

import (
	"context"
	"errors"
	"log"

	"orgdiag/internal/llm"
	"orgdiag/internal/project"
	"orgdiag/internal/prompt"
)

// Orchestrator turns completed interviews into a hypothesis report with one
// structured model call. It keeps no cache.
type Orchestrator struct {
	model llm.Model
}

func New(model llm.Model) *Orchestrator {
	return &Orchestrator{model: model}
}

// Run builds the synthesis prompt from every completed stakeholder and asks
// the model for a report. With no completed interviews it returns an empty
// report without calling the model.
func (o *Orchestrator) Run(ctx context.Context, st project.State) (project.Report, error) {
	if st.CompletedCount() == 0 {
		return project.Report{Hypotheses: []project.Hypothesis{}}, nil
	}
	if o.model == nil {
		return project.Report{}, &llm.ServiceError{Op: llm.OpStructured, Err: errors.New("no model configured")}
	}

	p := prompt.BuildSynthesisPrompt(st)
	raw, err := o.model.GenerateStructured(llm.WithOperation(ctx, llm.OpStructured), p, ReportSchema)
	if err != nil {
		return project.Report{}, llm.AsServiceError(llm.OpStructured, err)
	}
	rep, err := Parse(raw)
	if err != nil {
		log.Printf("synthesis: %v", err)
		return project.Report{}, err
	}
	return rep, nil
}
