package synthesis

import genai "google.golang.org/genai"

// ReportSchema is declared to the model for structured synthesis output.
// Every hypothesis field is required.
var ReportSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"executiveSummary": {Type: genai.TypeString},
		"hypotheses": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":       {Type: genai.TypeString},
					"description": {Type: genai.TypeString},
					"confidence": {
						Type:        genai.TypeNumber,
						Description: "0 to 1 scale",
						Minimum:     genai.Ptr(0.0),
						Maximum:     genai.Ptr(1.0),
					},
					"evidenceSource": {
						Type:  genai.TypeArray,
						Items: &genai.Schema{Type: genai.TypeString},
					},
				},
				Required: []string{"title", "description", "confidence", "evidenceSource"},
			},
		},
	},
	Required: []string{"executiveSummary", "hypotheses"},
}
