package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/benchschema/internal/presentation"
)

var diffFormat string

var registryDiffCmd = &cobra.Command{
	Use:   "registry:diff FROM TO",
	Short: "Compare the fields of two schemas",
	Long: `Compare two schemas field by field.

Fields are reported as added, removed or changed (type, enum members or
optionality differ), followed by a line diff of both schemas. Descriptions and
field order do not count as changes.

Examples:
  benchschema registry:diff applications-benchmarks::release-0.21 applications-benchmarks::release-1.0
  benchschema registry:diff applications-benchmarks::main applications-benchmarks::release-1.0 --format text`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			diff, err := rt.service.Diff(args[0], args[1])
			if err != nil {
				return err
			}
			dto := presentation.FromDiff(diff)

			if diffFormat == "text" {
				return presentation.NewTextFormatter(cmd.OutOrStdout()).FormatDiff(dto)
			}
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatDiff(dto)
		})
	},
}

func init() {
	registryDiffCmd.Flags().StringVarP(&diffFormat, "format", "f", "json", "Output format: json or text")
	rootCmd.AddCommand(registryDiffCmd)
}
