package presentation

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Colors follow the terminal's light/dark background.
var (
	passColor  = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#7DCE82"}
	failColor  = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#FF8A80"}
	mutedColor = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9E9E9E"}
)

// TextFormatter renders human-readable output. Styles degrade to plain text
// when the writer is not a terminal.
type TextFormatter struct {
	writer io.Writer
	pass   lipgloss.Style
	fail   lipgloss.Style
	muted  lipgloss.Style
	bold   lipgloss.Style
}

// NewTextFormatter creates a text formatter whose color profile is detected from writer
func NewTextFormatter(writer io.Writer) *TextFormatter {
	r := lipgloss.NewRenderer(writer)
	return &TextFormatter{
		writer: writer,
		pass:   r.NewStyle().Foreground(passColor).Bold(true),
		fail:   r.NewStyle().Foreground(failColor).Bold(true),
		muted:  r.NewStyle().Foreground(mutedColor),
		bold:   r.NewStyle().Bold(true),
	}
}

func (f *TextFormatter) status(ok bool) string {
	if ok {
		return f.pass.Render("PASS")
	}
	return f.fail.Render("FAIL")
}

// FormatReport writes a summary line, then every failed record with its violations.
func (f *TextFormatter) FormatReport(report ReportDTO) error {
	var b strings.Builder

	run := report.Run
	fmt.Fprintf(&b, "%s %s: %d records, %d passed, %d failed\n",
		f.status(report.OK), f.bold.Render(run.Identifier), run.Records, run.Passed, run.Failed)

	for _, failure := range report.Failures {
		fmt.Fprintf(&b, "  %s\n", f.fail.Render(failure.Location))
		if failure.Error != "" {
			fmt.Fprintf(&b, "    - decode: %s\n", failure.Error)
		}
		for _, v := range failure.Violations {
			line := fmt.Sprintf("%s: %s", v.Field, v.Reason)
			if v.Message != "" {
				line += ": " + v.Message
			}
			fmt.Fprintf(&b, "    - %s\n", line)
		}
	}

	b.WriteString(f.muted.Render(fmt.Sprintf("run %s in %s", run.ID, time.Duration(run.DurationMs)*time.Millisecond)))
	b.WriteByte('\n')

	_, err := io.WriteString(f.writer, b.String())
	return err
}

// FormatRuns writes one line per run, newest first as given.
func (f *TextFormatter) FormatRuns(runs []RunDTO) error {
	if len(runs) == 0 {
		_, err := io.WriteString(f.writer, f.muted.Render("no runs recorded")+"\n")
		return err
	}

	var b strings.Builder
	for _, run := range runs {
		fmt.Fprintf(&b, "%s %s %s %d/%d passed %s\n",
			f.status(run.Failed == 0),
			f.muted.Render(run.CreatedAt.Format(time.RFC3339)),
			run.Identifier,
			run.Passed,
			run.Records,
			f.muted.Render(run.ID),
		)
	}
	_, err := io.WriteString(f.writer, b.String())
	return err
}

// FormatDiff writes the field changes followed by the line diff of both specs.
func (f *TextFormatter) FormatDiff(diff DiffDTO) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s -> %s\n", f.bold.Render(diff.From), f.bold.Render(diff.To))
	if len(diff.Changes) == 0 {
		b.WriteString(f.muted.Render("no field changes") + "\n")
	}
	for _, c := range diff.Changes {
		switch c.Kind {
		case "added":
			fmt.Fprintf(&b, "  %s %s: %s\n", f.pass.Render("added  "), c.Field, c.To)
		case "removed":
			fmt.Fprintf(&b, "  %s %s: %s\n", f.fail.Render("removed"), c.Field, c.From)
		default:
			fmt.Fprintf(&b, "  %s %s: %s -> %s\n", f.bold.Render("changed"), c.Field, c.From, c.To)
		}
	}

	b.WriteByte('\n')
	for _, line := range strings.Split(strings.TrimSuffix(diff.Text, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+ "):
			line = f.pass.Render(line)
		case strings.HasPrefix(line, "- "):
			line = f.fail.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	_, err := io.WriteString(f.writer, b.String())
	return err
}
