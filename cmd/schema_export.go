package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/benchschema/internal/presentation"
)

var schemaExportCmd = &cobra.Command{
	Use:   "schema:export IDENTIFIER",
	Short: "Export a schema as a JSON Schema document",
	Long: `Export a schema as a JSON Schema (draft 2020-12) document.

Declared fields become properties, non-optional fields are required and
additional properties are allowed, matching how records are validated.
The document is compiled before it is printed.

Examples:
  benchschema schema:export datasheet > datasheet.schema.json
  benchschema schema:export applications-benchmarks::release-0.21 | jq '.required'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			doc, err := rt.service.JSONSchema(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatRaw(doc)
		})
	},
}

func init() {
	rootCmd.AddCommand(schemaExportCmd)
}
