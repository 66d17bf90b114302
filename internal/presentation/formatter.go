package presentation

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/zjrosen/benchschema/internal/config"
)

// ReportFormatter renders validation outcomes in a configured output format.
type ReportFormatter interface {
	FormatReport(report ReportDTO) error
	FormatRuns(runs []RunDTO) error
}

// NewReportFormatter returns the formatter for format ("json" or "text").
func NewReportFormatter(format string, writer io.Writer) (ReportFormatter, error) {
	switch format {
	case config.OutputJSON, "":
		return NewFormatter(writer), nil
	case config.OutputText:
		return NewTextFormatter(writer), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want %s or %s)", format, config.OutputJSON, config.OutputText)
	}
}

// Formatter handles JSON output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatRegistries formats a list of registries as JSON
func (f *Formatter) FormatRegistries(registries []RegistryDTO) error {
	return f.encode(registries)
}

// FormatSpec formats one spec as JSON
func (f *Formatter) FormatSpec(spec SpecDTO) error {
	return f.encode(spec)
}

// FormatDiff formats a schema diff as JSON
func (f *Formatter) FormatDiff(diff DiffDTO) error {
	return f.encode(diff)
}

// FormatReport formats a validation report as JSON
func (f *Formatter) FormatReport(report ReportDTO) error {
	return f.encode(report)
}

// FormatRuns formats recorded runs as JSON
func (f *Formatter) FormatRuns(runs []RunDTO) error {
	return f.encode(runs)
}

// FormatRaw writes an already encoded JSON document followed by a newline
func (f *Formatter) FormatRaw(doc []byte) error {
	if _, err := f.writer.Write(doc); err != nil {
		return err
	}
	_, err := io.WriteString(f.writer, "\n")
	return err
}
