package agentrouter

import (
	"github.com/plexify/plexify/engine/agent"
	"github.com/plexify/plexify/engine/source"
)

// GenerateRequest is the body of POST /agents/:agent_id. sourceIds is accepted
// as an alias of documentIds.
type GenerateRequest struct {
	ProjectID    string   `json:"projectId"`
	DocumentIDs  []string `json:"documentIds"`
	SourceIDs    []string `json:"sourceIds"`
	Instructions string   `json:"instructions"`
	Model        string   `json:"model"`
}

func (r *GenerateRequest) documentIDs() []string {
	if len(r.DocumentIDs) > 0 {
		return r.DocumentIDs
	}
	return r.SourceIDs
}

// GenerateResponse is the envelope plus the ids that could not be loaded.
type GenerateResponse struct {
	*agent.Envelope
	Missing []source.Missing `json:"missing,omitempty"`
}

type AgentDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type AgentsListResponse struct {
	Agents []AgentDTO `json:"agents"`
}
