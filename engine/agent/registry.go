package agent

import (
	"fmt"
	"slices"

	"github.com/plexify/plexify/engine/schema"
)

const (
	BoardBriefID       = "board-brief"
	AssessmentTrendsID = "assessment-trends"
	OZRFSectionID      = "ozrf-section"

	defaultTemperature = 0.2
)

// Definition describes one structured-output agent.
type Definition struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	CharsPerSource int     `json:"charsPerSource"`
	MaxTokens      int     `json:"maxTokens"`
	Temperature    float64 `json:"temperature"`

	role    string
	task    string
	example any
	demo    func() any
	output  any

	validator *schema.Validator
}

// Validator returns the compiled output schema.
func (d *Definition) Validator() *schema.Validator {
	return d.validator
}

// Demo returns the fixed offline payload.
func (d *Definition) Demo() any {
	return d.demo()
}

// Registry is an immutable set of agent definitions.
type Registry struct {
	defs map[string]*Definition
	ids  []string
}

// NewRegistry compiles each definition's output schema.
func NewRegistry(defs ...*Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		if _, dup := r.defs[d.ID]; dup {
			return nil, fmt.Errorf("duplicate agent id %q", d.ID)
		}
		s, err := schema.FromType(d.output)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", d.ID, err)
		}
		v, err := schema.NewValidator(s)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", d.ID, err)
		}
		d.validator = v
		r.defs[d.ID] = d
		r.ids = append(r.ids, d.ID)
	}
	slices.Sort(r.ids)
	return r, nil
}

// DefaultRegistry holds the board-brief, assessment-trends and ozrf-section agents.
func DefaultRegistry() (*Registry, error) {
	return NewRegistry(boardBriefDefinition(), assessmentTrendsDefinition(), ozrfSectionDefinition())
}

func (r *Registry) Get(id string) (*Definition, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// List returns definitions sorted by id.
func (r *Registry) List() []*Definition {
	out := make([]*Definition, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.defs[id])
	}
	return out
}

func boardBriefDefinition() *Definition {
	return &Definition{
		ID:             BoardBriefID,
		Title:          "Board Brief",
		Description:    "Executive summary, risks and recommendations for a board audience.",
		CharsPerSource: 3000,
		MaxTokens:      1200,
		Temperature:    defaultTemperature,
		role:           "an executive communications analyst preparing a board brief",
		task: "Summarize the sources into a concise brief for a board of directors. " +
			"Use only facts stated in the sources. Risk severity must be one of low, medium or high.",
		example: BoardBrief{
			Title:            "Short title for the brief",
			ExecutiveSummary: "Three to five sentence summary",
			KeyPoints:        []string{"Key point"},
			Risks:            []BriefRisk{{Title: "Risk", Severity: "medium", Mitigation: "Mitigation"}},
			Recommendations:  []string{"Recommendation"},
			NextSteps:        []string{"Next step"},
		},
		demo:   func() any { return demoBoardBrief() },
		output: BoardBrief{},
	}
}

func assessmentTrendsDefinition() *Definition {
	citation := StructuredCitation{Number: 1, SourceID: "source id", SourceName: "source label", Quote: "exact quote"}
	return &Definition{
		ID:             AssessmentTrendsID,
		Title:          "Assessment Trends",
		Description:    "Trends and cited metrics extracted from assessment data.",
		CharsPerSource: 2500,
		MaxTokens:      1600,
		Temperature:    defaultTemperature,
		role:           "a municipal finance analyst reviewing property assessment data",
		task: "Identify assessment trends and key metrics. Every numeric or tabular claim must carry " +
			"citations referencing the [Source N] number, its id, its label and an exact quote. " +
			"Use an empty citations array only when the figure is derived. " +
			"Direction is one of increasing, decreasing, stable or mixed.",
		example: AssessmentTrends{
			Summary: "Overall summary of the trends",
			Trends: []Trend{{
				Name: "Trend name", Direction: "increasing", Description: "What changed",
				Citations: []StructuredCitation{citation},
			}},
			Metrics: []Metric{{
				Label: "Metric", Value: "0", Unit: "%", Period: "FY2024",
				Citations: []StructuredCitation{citation},
			}},
			DataGaps: []string{"Missing data worth noting"},
		},
		demo:   func() any { return demoAssessmentTrends() },
		output: AssessmentTrends{},
	}
}

func ozrfSectionDefinition() *Definition {
	citation := StructuredCitation{Number: 1, SourceID: "source id", SourceName: "source label", Quote: "exact quote"}
	return &Definition{
		ID:             OZRFSectionID,
		Title:          "OZRF Section",
		Description:    "Opportunity zone reporting section with cited impact and investment figures.",
		CharsPerSource: 3000,
		MaxTokens:      1500,
		Temperature:    defaultTemperature,
		role:           "an opportunity zone compliance writer drafting a reporting framework section",
		task: "Draft the section narrative and list community impact and investment figures. " +
			"Every figure must carry citations referencing the [Source N] number, its id, its label " +
			"and an exact quote, or an empty citations array when no source states it directly.",
		example: OZRFSection{
			SectionTitle: "Section title",
			Narrative:    "Narrative paragraph",
			CommunityImpact: []Metric{{
				Label: "Impact metric", Value: "0", Unit: "jobs",
				Citations: []StructuredCitation{citation},
			}},
			Investment: []Metric{{
				Label: "Investment metric", Value: "0", Unit: "USD",
				Citations: []StructuredCitation{citation},
			}},
			ComplianceNotes: []string{"Compliance note"},
		},
		demo:   func() any { return demoOZRFSection() },
		output: OZRFSection{},
	}
}
