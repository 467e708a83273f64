package prompt

import (
	"fmt"
	"strings"

	"orgdiag/internal/llm"
	"orgdiag/internal/project"
)

// Bootstrap is the synthetic first user turn that opens every interview.
const Bootstrap = "Start the interview. Introduce yourself briefly and ask the first diagnostic question related to my business unit. Ask only one question."

// Render-time fallbacks for stakeholders without associations.
const (
	NoUnits  = "Global/General"
	NoGeos   = "Global"
	NoLabels = "None specified"
)

var concisenessGuidance = map[project.Conciseness]string{
	project.ConcisenessHigh:   "Be extremely brief. Ask exactly ONE question at a time. Do not provide long introductions.",
	project.ConcisenessMedium: "Keep responses balanced. Limit yourself to one or two focused questions.",
	project.ConcisenessLow:    "Provide detailed context and ask multiple investigative questions.",
}

// ConcisenessGuidance maps a conciseness level to questioning instructions.
func ConcisenessGuidance(c project.Conciseness) string {
	if g, ok := concisenessGuidance[c]; ok {
		return g
	}
	return concisenessGuidance[project.ConcisenessHigh]
}

// StakeholderContext holds the resolved association names of a stakeholder.
type StakeholderContext struct {
	Units  []string
	Geos   []string
	Labels []string
}

// Resolve looks up the stakeholder's association names. Dangling ids are
// dropped.
func Resolve(sh project.Stakeholder, st project.State) StakeholderContext {
	return StakeholderContext{
		Units:  st.ResolveNames(project.BusinessUnit, sh.BusinessUnitIDs),
		Geos:   st.ResolveNames(project.Geography, sh.GeographyIDs),
		Labels: st.ResolveNames(project.Label, sh.LabelIDs),
	}
}

// BuildInterviewSystemInstruction renders the interviewer's system
// instruction for one stakeholder. The output depends only on its inputs.
func BuildInterviewSystemInstruction(sh project.Stakeholder, st project.State, history []llm.Turn) string {
	cfg := st.InterviewConfig
	sc := Resolve(sh, st)
	units := joinOr(sc.Units, NoUnits)
	geos := joinOr(sc.Geos, NoGeos)

	persona := strings.TrimSpace(cfg.Persona)
	if persona == "" {
		persona = "Expert Consultant"
	}

	var buf strings.Builder
	writeSection(&buf, "ROLE", fmt.Sprintf(
		"You are %s, an expert organizational consultant conducting an initial diagnostic interview.", persona))
	writeSection(&buf, "PERSONA & STYLE", formatList([]string{
		"Tone: " + string(cfg.Tone),
		"Questioning Style: " + ConcisenessGuidance(cfg.Conciseness),
		"Custom Guidance: " + strings.TrimSpace(cfg.CustomInstructions),
	}))
	writeSection(&buf, "CONTEXT", strings.Join([]string{
		"Problem: " + strings.TrimSpace(st.ProblemStatement),
		"Stakeholder: " + sh.Name,
		"Business Units: " + units,
		"Geographies: " + geos,
		"Roles/Labels: " + joinOr(sc.Labels, NoLabels),
	}, "\n"))
	writeSection(&buf, "MISSION", formatList([]string{
		"You are interviewing " + sh.Name + ".",
		"Ask insightful questions to understand their perspective on the core problem.",
		fmt.Sprintf("Tailor your questions based on their associated units (%s) and regions (%s).", units, geos),
		"If they mention something interesting, ask deep-dive clarification questions.",
		"CRITICAL: Do not overwhelm the user. Stick to the questioning style defined above.",
		"Aim for a 15-minute level of depth, summarized in a few focused turns.",
	}))
	writeSection(&buf, "PROGRESS", fmt.Sprintf("Stakeholder answers so far: %d", countRole(history, llm.RoleUser)))
	return strings.TrimSpace(buf.String()) + "\n"
}

func countRole(history []llm.Turn, role llm.Role) int {
	n := 0
	for _, t := range history {
		if t.Role == role {
			n++
		}
	}
	return n
}
