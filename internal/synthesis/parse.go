package synthesis

import (
	"fmt"

	"orgdiag/internal/project"
	"orgdiag/internal/util/jsonutil"
)

// ParseError reports a synthesis answer that is not JSON or does not have
// the report shape.
type ParseError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("synthesis: parse: %s: %v", e.Reason, e.Err)
	}
	return "synthesis: parse: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

type wireHypothesis struct {
	Title          *string   `json:"title"`
	Description    *string   `json:"description"`
	Confidence     *float64  `json:"confidence"`
	EvidenceSource *[]string `json:"evidenceSource"`
}

type wireReport struct {
	ExecutiveSummary *string           `json:"executiveSummary"`
	Hypotheses       *[]wireHypothesis `json:"hypotheses"`
}

// Parse decodes a model answer into a Report. Nothing partial is returned
// on failure.
func Parse(raw []byte) (project.Report, error) {
	fail := func(reason string, err error) (project.Report, error) {
		return project.Report{}, &ParseError{Reason: reason, Raw: string(raw), Err: err}
	}

	var w wireReport
	if err := jsonutil.UnmarshalFlex(raw, &w); err != nil {
		return fail("invalid JSON", err)
	}
	if w.ExecutiveSummary == nil {
		return fail("missing executiveSummary", nil)
	}
	if w.Hypotheses == nil {
		return fail("missing hypotheses", nil)
	}

	out := project.Report{
		ExecutiveSummary: *w.ExecutiveSummary,
		Hypotheses:       make([]project.Hypothesis, 0, len(*w.Hypotheses)),
	}
	for i, h := range *w.Hypotheses {
		switch {
		case h.Title == nil:
			return fail(fmt.Sprintf("hypotheses[%d]: missing title", i), nil)
		case h.Description == nil:
			return fail(fmt.Sprintf("hypotheses[%d]: missing description", i), nil)
		case h.Confidence == nil:
			return fail(fmt.Sprintf("hypotheses[%d]: missing confidence", i), nil)
		case h.EvidenceSource == nil:
			return fail(fmt.Sprintf("hypotheses[%d]: missing evidenceSource", i), nil)
		case *h.Confidence < 0 || *h.Confidence > 1:
			return fail(fmt.Sprintf("hypotheses[%d]: confidence %v outside [0,1]", i, *h.Confidence), nil)
		}
		out.Hypotheses = append(out.Hypotheses, project.Hypothesis{
			Title:          *h.Title,
			Description:    *h.Description,
			Confidence:     *h.Confidence,
			EvidenceSource: append([]string{}, (*h.EvidenceSource)...),
		})
	}
	return out, nil
}
