package uc

import (
	"context"
	"fmt"

	"github.com/plexify/plexify/engine/agent"
	"github.com/plexify/plexify/engine/source"
)

// SourceLoader reads project documents.
type SourceLoader interface {
	Load(ctx context.Context, projectID string, ids []string) (*source.Result, error)
}

// -----------------------------------------------------------------------------
// GenerateOutput
// -----------------------------------------------------------------------------

type GenerateInput struct {
	AgentID      string
	ProjectID    string
	DocumentIDs  []string
	Instructions string
	Model        string
}

type GenerateOutput struct {
	Envelope *agent.Envelope
	Missing  []source.Missing
}

type GenerateAgentOutput struct {
	agents  *agent.Service
	sources SourceLoader
}

func NewGenerateAgentOutput(agents *agent.Service, sources SourceLoader) *GenerateAgentOutput {
	return &GenerateAgentOutput{agents: agents, sources: sources}
}

// Execute checks the agent id before touching the filesystem, then loads the
// selected documents and runs the agent over them.
func (uc *GenerateAgentOutput) Execute(ctx context.Context, in *GenerateInput) (*GenerateOutput, error) {
	if _, ok := uc.agents.Registry().Get(in.AgentID); !ok {
		return nil, agent.ErrUnknownAgent
	}
	loaded, err := uc.sources.Load(ctx, in.ProjectID, in.DocumentIDs)
	if err != nil {
		return nil, err
	}
	env, err := uc.agents.Generate(ctx, &agent.GenerateInput{
		AgentID:      in.AgentID,
		ProjectID:    loaded.ProjectID,
		Sources:      loaded.Sources,
		Instructions: in.Instructions,
		Model:        in.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("%s generation failed: %w", in.AgentID, err)
	}
	return &GenerateOutput{Envelope: env, Missing: loaded.Missing}, nil
}

// -----------------------------------------------------------------------------
// ListAgents
// -----------------------------------------------------------------------------

type ListAgents struct {
	registry *agent.Registry
}

func NewListAgents(registry *agent.Registry) *ListAgents {
	return &ListAgents{registry: registry}
}

func (uc *ListAgents) Execute(_ context.Context) []*agent.Definition {
	return uc.registry.List()
}
