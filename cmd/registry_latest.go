package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var registryLatestCmd = &cobra.Command{
	Use:   "registry:latest REGISTRY",
	Short: "Print the newest version key of a registry",
	Long: `Print the newest version key of a registry.

Release keys (release-X.Y) compare by semantic version; any release is newer
than a channel key such as main.

Examples:
  benchschema registry:latest applications-benchmarks
  benchschema validate "applications-benchmarks::$(benchschema registry:latest applications-benchmarks)" report.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			latest, err := rt.service.Latest(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), latest)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(registryLatestCmd)
}
