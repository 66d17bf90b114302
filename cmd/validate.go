package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/zjrosen/benchschema/internal/ingest"
	"github.com/zjrosen/benchschema/internal/log"
	"github.com/zjrosen/benchschema/internal/presentation"
	"github.com/zjrosen/benchschema/internal/watcher"
)

// ErrRecordsFailed is returned when at least one record failed validation.
var ErrRecordsFailed = errors.New("records failed validation")

var (
	validateFormat string
	validateWatch  bool
)

var validateCmd = &cobra.Command{
	Use:   "validate IDENTIFIER FILE...",
	Short: "Validate report files against a schema",
	Long: `Validate every record of every file against one schema.

Files are decoded by extension: .json (array or single object), .jsonl/.ndjson,
.csv (header row, every cell a string) and .yaml/.yml. A failing record never
stops the run: every failure is reported with its file:index location and all
of its violations. The command exits non-zero when any record failed.

With --watch the files are validated again whenever one of them changes, until
interrupted.

Examples:
  benchschema validate applications-benchmarks::release-0.21 results.csv
  benchschema validate crates-io-validation crates.json --format text
  benchschema validate datasheet datasheet.jsonl --watch`,
	Args: cobra.MinimumNArgs(2),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	ident, files := args[0], args[1:]

	format := cfg.Validation.Output
	if cmd.Flags().Changed("format") {
		format = validateFormat
	}
	formatter, err := presentation.NewReportFormatter(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	return withRuntime(cmd.Context(), func(rt *runtime) error {
		err := validateFiles(cmd.Context(), rt, formatter, ident, files)
		if !validateWatch {
			return err
		}
		if err != nil && !errors.Is(err, ErrRecordsFailed) {
			// Keep watching: the next save may fix the file
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return watchFiles(cmd, rt, formatter, ident, files)
	})
}

// validateFiles decodes files, validates the records and prints the report.
func validateFiles(ctx context.Context, rt *runtime, formatter presentation.ReportFormatter, ident string, files []string) error {
	records, err := ingest.ReadFiles(files)
	if err != nil {
		return err
	}

	result, err := rt.service.ValidateBatch(ctx, ident, records)
	if err != nil {
		return err
	}

	if err := formatter.FormatReport(presentation.FromBatchResult(result)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if !result.Run.OK() {
		return fmt.Errorf("%w: %d of %d", ErrRecordsFailed, result.Run.Failed(), result.Run.Records())
	}
	return nil
}

// watchFiles re-validates on every change until interrupted.
func watchFiles(cmd *cobra.Command, rt *runtime, formatter presentation.ReportFormatter, ident string, files []string) error {
	w, err := watcher.New(watcher.Config{Paths: files, DebounceDur: cfg.Watch.Debounce})
	if err != nil {
		return err
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return err
	}
	defer func() { _ = w.Stop() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Fprintln(cmd.ErrOrStderr(), "Watching for changes, press Ctrl+C to stop")
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			log.Info(log.CatWatcher, "Report files changed, validating", "files", len(files))
			if err := validateFiles(ctx, rt, formatter, ident, files); err != nil && !errors.Is(err, ErrRecordsFailed) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			}
		}
	}
}

func init() {
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "json", "Output format: json or text (default from validation.output)")
	validateCmd.Flags().BoolVarP(&validateWatch, "watch", "w", false, "Validate again whenever a file changes")
	rootCmd.AddCommand(validateCmd)
}
