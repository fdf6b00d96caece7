package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/plexify/plexify/engine/agent"
	agentuc "github.com/plexify/plexify/engine/agent/uc"
	"github.com/plexify/plexify/engine/infra/server"
	"github.com/plexify/plexify/engine/source"
	"github.com/plexify/plexify/pkg/config"
)

type agentRun struct {
	*agent.Envelope
	Missing []source.Missing `json:"missing,omitempty"`
}

// AgentCmd runs one agent over local documents and prints the envelope.
func AgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent <agent-id>",
		Short: "Generate an agent envelope from project documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := cmd.Flags().GetString("project")
			if err != nil {
				return err
			}
			docs, err := cmd.Flags().GetStringSlice("doc")
			if err != nil {
				return err
			}
			instructions, err := cmd.Flags().GetString("instructions")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			deps, err := server.BuildDependencies(ctx, config.FromContext(ctx))
			if err != nil {
				return err
			}
			defer func() { _ = deps.Close(ctx) }()
			out, err := deps.State.Generate.Execute(ctx, &agentuc.GenerateInput{
				AgentID:      args[0],
				ProjectID:    project,
				DocumentIDs:  docs,
				Instructions: instructions,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), agentRun{Envelope: out.Envelope, Missing: out.Missing})
		},
	}
	cmd.Flags().String("project", "", "Project id under the sources root (defaults to sources.default_project)")
	cmd.Flags().StringSlice("doc", nil, "Document id to include; repeat or comma-separate")
	cmd.Flags().String("instructions", "", "Extra instructions appended to the prompt")
	return cmd
}

// AgentsCmd lists the registered agents.
func AgentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List the available agents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := agent.DefaultRegistry()
			if err != nil {
				return err
			}
			return writeAgents(cmd.OutOrStdout(), registry.List())
		},
	}
}

func writeAgents(w io.Writer, defs []*agent.Definition) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDESCRIPTION")
	for _, def := range defs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", def.ID, def.Title, def.Description)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
