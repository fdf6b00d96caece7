package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/plexify/plexify/pkg/version"
)

func VersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, err := cmd.Flags().GetBool("json")
			if err != nil {
				return err
			}
			info := version.Get()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), info)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "plexify %s (commit %s, built %s, %s)\n",
				info.Version, info.CommitHash, info.BuildDate, runtime.Version())
			return err
		},
	}
	cmd.Flags().Bool("json", false, "Print as JSON")
	return cmd
}
