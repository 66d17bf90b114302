package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/benchschema/internal/presentation"
)

var regName string

var registryListCmd = &cobra.Command{
	Use:   "registry:list",
	Short: "List all registries and their versions",
	Long: `List all registries and their version keys as JSON.

Versions are listed in registration order. "latest" is the newest version:
release-X.Y keys compare by semantic version and any release is newer than a
channel key such as main.
Use --registry to show a single registry.

Examples:
  # List all registries
  benchschema registry:list

  # Show one registry
  benchschema registry:list --registry applications-benchmarks
  benchschema registry:list -r applications-benchmarks

  # Parse specific fields with jq
  benchschema registry:list | jq '.[].latest'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			names := rt.service.Registries()
			if cmd.Flags().Changed("registry") {
				names = []string{regName}
			}

			dtos := make([]presentation.RegistryDTO, 0, len(names))
			for _, name := range names {
				keys, err := rt.service.Versions(name)
				if err != nil {
					return err
				}
				latest, err := rt.service.Latest(name)
				if err != nil {
					return err
				}
				dtos = append(dtos, presentation.RegistryDTO{Name: name, Versions: keys, Latest: latest})
			}

			return presentation.NewFormatter(cmd.OutOrStdout()).FormatRegistries(dtos)
		})
	},
}

func init() {
	registryListCmd.Flags().StringVarP(&regName, "registry", "r", "", "Show only this registry (e.g., datasheet)")
	rootCmd.AddCommand(registryListCmd)
}
