package project

// DefaultInterviewConfig is the interviewer setup a new project starts with.
func DefaultInterviewConfig() InterviewConfig {
	return InterviewConfig{
		Persona:            "Expert Consultant",
		Tone:               ToneProfessional,
		Conciseness:        ConcisenessHigh,
		CustomInstructions: "Always ask only ONE question at a time. Be direct and avoid filler sentences.",
	}
}

// Default returns the initial project: a small sample organization and an
// empty roster.
func Default() State {
	return State{
		BusinessUnits: []OrgEntity{
			{ID: "bu1", Name: "Global Procurement"},
			{ID: "bu2", Name: "Operations & Production"},
		},
		Geographies: []OrgEntity{
			{ID: "geo1", Name: "EMEA"},
			{ID: "geo2", Name: "North America"},
		},
		Labels: []OrgEntity{
			{ID: "l1", Name: "Management"},
			{ID: "l2", Name: "Engineering"},
		},
		InterviewConfig: DefaultInterviewConfig(),
	}
}
