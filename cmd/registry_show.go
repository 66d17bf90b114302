package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/benchschema/internal/presentation"
)

var registryShowCmd = &cobra.Command{
	Use:   "registry:show IDENTIFIER",
	Short: "Show the fields of one schema",
	Long: `Show one schema and its fields as JSON.

Examples:
  benchschema registry:show applications-benchmarks::release-0.21
  benchschema registry:show datasheet

  # Required field names
  benchschema registry:show crates-io-validation | jq '.fields[] | select(.optional | not) | .name'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			spec, err := rt.service.Lookup(args[0])
			if err != nil {
				return err
			}
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatSpec(presentation.FromDomainSpec(spec))
		})
	},
}

func init() {
	rootCmd.AddCommand(registryShowCmd)
}
