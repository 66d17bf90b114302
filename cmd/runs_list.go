package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/zjrosen/benchschema/internal/presentation"
)

// ErrHistoryDisabled is returned by runs:list when history.enabled is false.
var ErrHistoryDisabled = errors.New("run history is disabled (set history.enabled: true)")

var (
	runsLimit  int
	runsFormat string
)

var runsListCmd = &cobra.Command{
	Use:   "runs:list",
	Short: "List recent validation runs",
	Long: `List recent validation runs recorded in the history store, newest first.

Runs are recorded by validate when history.enabled is true in the config.

Examples:
  benchschema runs:list
  benchschema runs:list --limit 5 --format text
  benchschema runs:list | jq '.[] | select(.failed > 0) | .id'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.History.Enabled {
			return ErrHistoryDisabled
		}

		format := cfg.Validation.Output
		if cmd.Flags().Changed("format") {
			format = runsFormat
		}
		formatter, err := presentation.NewReportFormatter(format, cmd.OutOrStdout())
		if err != nil {
			return err
		}

		return withRuntime(cmd.Context(), func(rt *runtime) error {
			runs, err := rt.service.RecentRuns(runsLimit)
			if err != nil {
				return err
			}
			return formatter.FormatRuns(presentation.FromDomainRuns(runs))
		})
	},
}

func init() {
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Maximum number of runs (0 for all)")
	runsListCmd.Flags().StringVarP(&runsFormat, "format", "f", "json", "Output format: json or text (default from validation.output)")
	rootCmd.AddCommand(runsListCmd)
}
