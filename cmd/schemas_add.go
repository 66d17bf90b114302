package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/zjrosen/benchschema/internal/config"
	regapp "github.com/zjrosen/benchschema/internal/registry/application"
	"github.com/zjrosen/benchschema/internal/schemas"
)

var schemasAddCmd = &cobra.Command{
	Use:   "schemas:add FILE",
	Short: "Register a user schema declaration file in the config",
	Long: `Check a YAML schema declaration file and add it to schemas.user_files.

The file must parse, every declaration must be valid and none may redeclare an
existing version. Comments and other settings in the config file are kept.

Declaration format:
  schemas:
    - registry: applications-benchmarks
      version: release-1.1
      description: Application benchmarks for the 1.1 release
      fields:
        - {name: name, type: string}
        - {name: status, type: enum, allowed: [Success, RunFail]}
        - {name: watts, type: number, optional: true}

Examples:
  benchschema schemas:add schemas/gpu.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if slices.Contains(cfg.Schemas.UserFiles, path) {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s is already registered\n", path)
			return err
		}

		files := append(append([]string{}, cfg.Schemas.UserFiles...), path)
		user, err := regapp.LoadUserSpecs(files)
		if err != nil {
			return err
		}
		if _, err := regapp.NewUserRegistry(schemas.Builtins(), user); err != nil {
			return err
		}

		configPath := configFilePath()
		updated, err := config.AddUserFile(configPath, cfg.Schemas.UserFiles, path)
		if err != nil {
			return fmt.Errorf("update %s: %w", configPath, err)
		}
		cfg.Schemas.UserFiles = updated

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", path, configPath)
		return err
	},
}

func init() {
	rootCmd.AddCommand(schemasAddCmd)
}
