package agent

import (
	"time"

	"github.com/invopop/jsonschema"

	"github.com/plexify/plexify/engine/source"
)

const SchemaVersion = "1.0"

// Envelope wraps an agent's output with its provenance.
type Envelope struct {
	AgentID       string       `json:"agentId"`
	SchemaVersion string       `json:"schemaVersion"`
	GeneratedAt   time.Time    `json:"generatedAt"`
	ProjectID     string       `json:"projectId"`
	SourcesUsed   []source.Ref `json:"sourcesUsed"`
	Output        any          `json:"output"`
	Model         string       `json:"model,omitempty"`
	Demo          bool         `json:"demo,omitempty"`
}

// StructuredCitation ties a claim back to a numbered source and quote.
type StructuredCitation struct {
	Number     int    `json:"number"`
	SourceID   string `json:"sourceId"`
	SourceName string `json:"sourceName"`
	Quote      string `json:"quote"`
}

// -----------------------------------------------------------------------------
// Board brief
// -----------------------------------------------------------------------------

type BoardBrief struct {
	Title            string      `json:"title"`
	ExecutiveSummary string      `json:"executiveSummary"`
	KeyPoints        []string    `json:"keyPoints"`
	Risks            []BriefRisk `json:"risks"`
	Recommendations  []string    `json:"recommendations"`
	NextSteps        []string    `json:"nextSteps"`
}

type BriefRisk struct {
	Title      string `json:"title"`
	Severity   string `json:"severity" jsonschema:"enum=low,enum=medium,enum=high"`
	Mitigation string `json:"mitigation"`
}

// -----------------------------------------------------------------------------
// Assessment trends
// -----------------------------------------------------------------------------

type AssessmentTrends struct {
	Summary  string   `json:"summary"`
	Trends   []Trend  `json:"trends"`
	Metrics  []Metric `json:"metrics"`
	DataGaps []string `json:"dataGaps"`
}

type Trend struct {
	Name        string               `json:"name"`
	Direction   string               `json:"direction"`
	Description string               `json:"description"`
	Citations   []StructuredCitation `json:"citations"`
}

// Metric is a numeric or tabular claim. Citations may be empty when the
// figure is derived rather than quoted.
type Metric struct {
	Label     string               `json:"label"`
	Value     MetricValue          `json:"value"`
	Unit      string               `json:"unit,omitempty"`
	Period    string               `json:"period,omitempty"`
	Citations []StructuredCitation `json:"citations"`
}

// MetricValue is the figure as the model wrote it. Replies carry either a
// number (6.2) or a formatted string ("6.2", "$18.5M").
type MetricValue string

func (MetricValue) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string"},
			{Type: "number"},
		},
	}
}

// -----------------------------------------------------------------------------
// OZRF section
// -----------------------------------------------------------------------------

type OZRFSection struct {
	SectionTitle    string   `json:"sectionTitle"`
	Narrative       string   `json:"narrative"`
	CommunityImpact []Metric `json:"communityImpact"`
	Investment      []Metric `json:"investment"`
	ComplianceNotes []string `json:"complianceNotes"`
}
